package advisor

import (
	"context"
	"strings"
)

// Scripted answers the generator path without a model, so the service stays
// usable when Ark credentials are not configured.
type Scripted struct{}

var greetingWords = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"}

// Generate implements Generator.
func (s *Scripted) Generate(_ context.Context, req GenRequest) (string, error) {
	q := strings.ToLower(strings.TrimSpace(req.Query))

	for _, g := range greetingWords {
		if q == g || strings.HasPrefix(q, g+" ") || strings.HasPrefix(q, g+",") {
			if strings.Contains(req.StateContext, "Returning buyer") {
				return "Welcome back! I remember your last visit. Tell me what you're looking for " +
					"this time and I'll search our inventory for you.", nil
			}
			return "Hello! I'm your car buying assistant. Tell me what you're looking for " +
				"(a make, a body style or a budget) and I'll search our inventory for you.", nil
		}
	}

	if strings.Contains(req.StateContext, "READY TO ORDER") {
		return "You're all set. Just say 'confirm' and I'll place the order for your selected vehicle.", nil
	}
	if strings.Contains(req.StateContext, "[Need address]") {
		return "I still need your delivery address to complete the order. " +
			"Please send it like: address: 12 High Street, London.", nil
	}

	return "I can help you find and order a car from our inventory. " +
		"Try something like 'show me hybrid SUVs under $35,000' and pick a result by number.", nil
}
