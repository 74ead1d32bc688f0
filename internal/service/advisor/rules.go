package advisor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/catalog"
)

var (
	nameRe    = regexp.MustCompile(`(?i)name\s*:?\s*([^,\n]+)`)
	phoneRe   = regexp.MustCompile(`(?i)phone\s*:?\s*([+\d\s\-()]+)`)
	emailRe   = regexp.MustCompile(`(?i)email\s*:?\s*([^\s,]+@[^\s,]+)`)
	addressRe = regexp.MustCompile(`(?i)(?:delivery\s+)?address\s*:?\s*([^,]+(?:,[^,]+)*)`)
)

// extractContactInfo pulls name/phone/email/address fields out of free text.
func extractContactInfo(text string) map[string]string {
	info := make(map[string]string)
	if m := nameRe.FindStringSubmatch(text); m != nil {
		info["name"] = strings.TrimSpace(m[1])
	}
	if m := phoneRe.FindStringSubmatch(text); m != nil {
		info["phone"] = strings.TrimSpace(m[1])
	}
	if m := emailRe.FindStringSubmatch(text); m != nil {
		info["email"] = strings.TrimSpace(m[1])
	}
	if m := addressRe.FindStringSubmatch(text); m != nil {
		info["address"] = strings.TrimSpace(m[1])
	}
	return info
}

var confirmationKeywords = []string{
	"confirm", "place order", "buy", "purchase", "i want this",
	"proceed", "yes i want", "go ahead", "yes",
}

// isOrderConfirmation reports whether the user is confirming a purchase.
func isOrderConfirmation(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	for _, k := range confirmationKeywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

var addressIndicators = []string{
	"address", "street", "road", "avenue", "city", "phone", "email", "name:",
}

// containsAddressInfo reports whether the text looks like delivery details.
func containsAddressInfo(text string) bool {
	t := strings.ToLower(text)
	if t == "" {
		return false
	}
	for _, indicator := range addressIndicators {
		if strings.Contains(t, indicator) {
			return true
		}
	}
	return false
}

// parseSelection interprets a bare number as a pick from the last results.
func parseSelection(text string) (int, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, false
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, false
	}
	return n, true
}

var knownMakes = []string{
	"toyota", "honda", "ford", "tesla", "bmw", "mercedes", "hyundai",
	"kia", "volkswagen", "nissan", "audi", "mazda", "subaru", "lexus",
}

var knownStyles = []string{"suv", "sedan", "hatchback", "coupe", "truck", "van", "convertible", "wagon"}

var knownFuels = []string{"electric", "hybrid", "diesel", "petrol", "gasoline"}

var searchTriggers = []string{
	"car", "cars", "vehicle", "vehicles", "recommend", "looking for",
	"show me", "find me", "search", "inventory", "suggest",
}

var (
	priceMaxRe   = regexp.MustCompile(`(?i)(?:under|below|less than|up to|max(?:imum)?(?: of)?|budget(?: of| is)?)\s*\$?\s*([\d,]+)\s*(k)?`)
	priceMinRe   = regexp.MustCompile(`(?i)(?:over|above|more than|at least|min(?:imum)?(?: of)?)\s*\$?\s*([\d,]+)\s*(k)?`)
	yearMinRe    = regexp.MustCompile(`(?i)(?:newer than|after|from)\s*(20\d{2})`)
	mileageMaxRe = regexp.MustCompile(`(?i)(?:under|below|less than)\s*([\d,]+)\s*(?:km|miles|mi)\b`)
)

func parseAmount(digits, kSuffix string) float64 {
	n, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0
	}
	if kSuffix != "" {
		n *= 1000
	}
	return n
}

// parseSearchFilters detects a car-search intent and extracts filters. The
// LangGraph tool-calling supervisor picked filters via the LLM; here the
// cues are matched directly so the search works with or without a model.
func parseSearchFilters(text string) (catalog.Filters, bool) {
	t := strings.ToLower(text)
	var f catalog.Filters
	matched := false

	for _, mk := range knownMakes {
		if strings.Contains(t, mk) {
			f.Make = mk
			matched = true
			break
		}
	}
	for _, st := range knownStyles {
		if strings.Contains(t, st) {
			f.Style = st
			matched = true
			break
		}
	}
	for _, fu := range knownFuels {
		if strings.Contains(t, fu) {
			if fu == "gasoline" {
				fu = "petrol"
			}
			f.FuelType = fu
			matched = true
			break
		}
	}

	// Mileage first: "under 30,000 km" must not be read as a price cap.
	if m := mileageMaxRe.FindStringSubmatch(t); m != nil {
		f.MileageMax = int(parseAmount(m[1], ""))
		matched = true
		t = mileageMaxRe.ReplaceAllString(t, "")
	}
	if m := priceMaxRe.FindStringSubmatch(t); m != nil {
		f.PriceMax = parseAmount(m[1], m[2])
		matched = true
	}
	if m := priceMinRe.FindStringSubmatch(t); m != nil {
		f.PriceMin = parseAmount(m[1], m[2])
		matched = true
	}
	if m := yearMinRe.FindStringSubmatch(t); m != nil {
		f.YearMin = int(parseAmount(m[1], ""))
		matched = true
	}

	if matched {
		return f, true
	}

	// Generic ask ("what cars do you have") without concrete filters.
	for _, trigger := range searchTriggers {
		if strings.Contains(t, trigger) {
			return catalog.Filters{}, true
		}
	}
	return catalog.Filters{}, false
}

// formatPrice renders 21500 as "$21,500".
func formatPrice(price float64) string {
	if price <= 0 {
		return "Price N/A"
	}
	whole := strconv.FormatInt(int64(price), 10)
	var b strings.Builder
	b.WriteByte('$')
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
		if len(whole) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(whole); i += 3 {
		b.WriteString(whole[i : i+3])
		if i+3 < len(whole) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

// formatCarCard renders one car as a single result line.
func formatCarCard(c catalog.Car) string {
	mileage := "Mileage N/A"
	if c.Mileage > 0 {
		mileage = fmt.Sprintf("%d km", c.Mileage)
	}
	card := fmt.Sprintf("%s - %s - %s", c.Title(), formatPrice(c.Price), mileage)
	if c.Description != "" {
		desc := c.Description
		if idx := strings.Index(desc, "."); idx >= 0 {
			desc = desc[:idx]
		}
		if len(desc) > 100 {
			desc = desc[:100]
		}
		card += " - " + desc
	}
	return card
}

// buildResultsMessage renders a numbered result list with a top pick.
func buildResultsMessage(cars []catalog.Car) string {
	if len(cars) == 0 {
		return "No cars matched your filters."
	}

	var lines []string
	for i, c := range cars {
		if i >= 8 {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, formatCarCard(c)))
	}

	plural := "es"
	if len(cars) == 1 {
		plural = ""
	}
	summary := fmt.Sprintf("I found %d match%s. Top pick: %s.\n", len(cars), plural, cars[0].Title())
	summary += "Reply with the number to select a car, or say 'more filters' to narrow results."
	return summary + "\n\n" + strings.Join(lines, "\n")
}
