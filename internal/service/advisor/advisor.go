package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/catalog"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/service/conversation"
)

// Reply is one advisor answer plus the agent that produced it.
type Reply struct {
	Text  string
	Agent string
}

// Advisor turns a user message into a reply, mutating session state along
// the way (collected contact info, selection, placed orders).
type Advisor interface {
	Respond(ctx context.Context, sess *conversation.Session, query string) (Reply, error)
}

// Inventory is the slice of the catalog store the advisor needs.
type Inventory interface {
	FindCars(ctx context.Context, f catalog.Filters, limit int) ([]catalog.Car, error)
	CreateOrder(ctx context.Context, o catalog.Order) (string, error)
	OrderBySession(ctx context.Context, sessionID string) (catalog.Order, error)
	UserProfile(ctx context.Context, email string) (catalog.UserProfile, error)
}

// ContextBuilder supplies conversation history for the generator prompt.
type ContextBuilder interface {
	ContextForLLM(ctx context.Context, sessionID string) string
}

// Generator produces the free-form reply when no deterministic rule matched.
type Generator interface {
	Generate(ctx context.Context, req GenRequest) (string, error)
}

// GenRequest carries everything a generator may want for one reply.
type GenRequest struct {
	Query        string
	Context      string
	StateContext string
	UserEmail    string
}

// Service is the supervisor pipeline: contact extraction, order and
// selection rules, inventory search, then the generator as the last resort.
type Service struct {
	inventory Inventory
	history   ContextBuilder
	gen       Generator
}

// New assembles the advisor. history may be nil (no prompt context), gen may
// be nil (a scripted generator is substituted).
func New(inventory Inventory, history ContextBuilder, gen Generator) *Service {
	if gen == nil {
		gen = &Scripted{}
	}
	return &Service{inventory: inventory, history: history, gen: gen}
}

const resultsLimit = 8

// Respond runs the pipeline for one user message.
func (a *Service) Respond(ctx context.Context, sess *conversation.Session, query string) (Reply, error) {
	if info := extractContactInfo(query); len(info) > 0 {
		log.Debug().Str("component", "advisor").Str("session_id", sess.ID).
			Int("fields", len(info)).Msg("extracted contact info")
		for k, v := range info {
			sess.Collected[k] = v
		}
	}

	if sess.Selected != nil && !sess.Ordered() && isOrderConfirmation(query) {
		return a.placeOrderOrAskAddress(ctx, sess), nil
	}

	if sess.Awaiting == "address" && sess.Selected != nil && !sess.Ordered() && containsAddressInfo(query) {
		return a.placeOrderOrAskAddress(ctx, sess), nil
	}

	if reply, ok := a.handleSelection(sess, query); ok {
		return reply, nil
	}

	if filters, ok := parseSearchFilters(query); ok {
		return a.searchInventory(ctx, sess, filters)
	}

	return a.generate(ctx, sess, query)
}

func (a *Service) placeOrderOrAskAddress(ctx context.Context, sess *conversation.Session) Reply {
	// A client that kept its token across a server restart may confirm an
	// order the database already has; don't place it twice.
	if existing, err := a.inventory.OrderBySession(ctx, sess.ID); err == nil {
		sess.OrderID = existing.ID
		sess.Stage = "ordered"
		sess.Awaiting = ""
		text := fmt.Sprintf(
			"You already have an order in this session.\n\n"+
				"Order ID: %s\n"+
				"Vehicle: %s\n"+
				"Status: %s\n\n"+
				"Our team will contact you within 24 hours.",
			existing.ID, existing.Car.Title(), existing.Status)
		return Reply{Text: text, Agent: "OrderHandler"}
	} else if !errors.Is(err, catalog.ErrNotFound) {
		log.Warn().Err(err).Str("component", "advisor").Str("session_id", sess.ID).Msg("order lookup failed")
	}

	car := *sess.Selected
	address := sess.Collected["address"]

	if address == "" {
		sess.Awaiting = "address"
		text := fmt.Sprintf(
			"To complete your order for the %s %s, I just need your delivery address.\n\nPlease provide your full address.",
			car.Make, car.Model)
		return Reply{Text: text, Agent: "OrderHandler"}
	}

	buyerName := sess.Collected["name"]
	if buyerName == "" {
		buyerName = sess.UserEmail
	}
	buyerEmail := sess.Collected["email"]
	if buyerEmail == "" {
		buyerEmail = sess.UserEmail
	}

	orderID, err := a.inventory.CreateOrder(ctx, catalog.Order{
		SessionID:    sess.ID,
		UserEmail:    sess.UserEmail,
		BuyerName:    buyerName,
		BuyerAddress: address,
		BuyerPhone:   sess.Collected["phone"],
		BuyerEmail:   buyerEmail,
		Car:          car,
		Summary:      sess.MemorySummary,
	})
	if err != nil {
		log.Error().Err(err).Str("component", "advisor").Str("session_id", sess.ID).Msg("order placement failed")
		return Reply{
			Text:  fmt.Sprintf("Sorry, there was an error: %v. Please try again.", err),
			Agent: "OrderHandler",
		}
	}

	sess.OrderID = orderID
	sess.Stage = "ordered"
	sess.Awaiting = ""

	text := fmt.Sprintf(
		"Order placed successfully!\n\n"+
			"Order ID: %s\n"+
			"Vehicle: %s\n"+
			"Price: %s\n"+
			"Delivery to: %s\n\n"+
			"Our team will contact you within 24 hours.",
		orderID, car.Title(), formatPrice(car.Price), address)
	return Reply{Text: text, Agent: "OrderHandler"}
}

func (a *Service) handleSelection(sess *conversation.Session, query string) (Reply, bool) {
	if len(sess.LastResults) == 0 {
		return Reply{}, false
	}
	n, ok := parseSelection(query)
	if !ok {
		return Reply{}, false
	}
	if n < 1 || n > len(sess.LastResults) {
		text := fmt.Sprintf("Selection %d is out of range. Please choose between 1 and %d.", n, len(sess.LastResults))
		return Reply{Text: text, Agent: "SelectionHandler"}, true
	}

	car := sess.LastResults[n-1]
	sess.Selected = &car
	sess.Stage = "vehicle_selected"
	sess.Awaiting = "address"

	mileage := "N/A"
	if car.Mileage > 0 {
		mileage = fmt.Sprintf("%d km", car.Mileage)
	}
	text := fmt.Sprintf(
		"Great choice! You've selected:\n\n"+
			"%s\n"+
			"Price: %s\n"+
			"Mileage: %s\n\n"+
			"To complete your order, please provide:\n"+
			"- Your full name\n"+
			"- Delivery address\n"+
			"- Phone number\n"+
			"- Email address\n\n"+
			"You can provide them all at once or one at a time.",
		car.Title(), formatPrice(car.Price), mileage)
	return Reply{Text: text, Agent: "SelectionHandler"}, true
}

func (a *Service) searchInventory(ctx context.Context, sess *conversation.Session, filters catalog.Filters) (Reply, error) {
	cars, err := a.inventory.FindCars(ctx, filters, resultsLimit)
	if err != nil {
		return Reply{}, fmt.Errorf("inventory search: %w", err)
	}

	sess.LastResults = cars
	log.Info().Str("component", "advisor").Str("session_id", sess.ID).
		Int("results", len(cars)).Msg("inventory searched")
	return Reply{Text: buildResultsMessage(cars), Agent: "CarSearch"}, nil
}

func (a *Service) generate(ctx context.Context, sess *conversation.Session, query string) (Reply, error) {
	var convContext string
	if a.history != nil {
		convContext = a.history.ContextForLLM(ctx, sess.ID)
	}

	a.loadProfile(ctx, sess)

	var state strings.Builder
	if sess.ProfileSummary != "" {
		fmt.Fprintf(&state, "[Returning buyer. Last visit: %s]\n", sess.ProfileSummary)
	}
	if sess.Selected != nil && !sess.Ordered() {
		fmt.Fprintf(&state, "[Selected: %s %s - %s]\n", sess.Selected.Make, sess.Selected.Model, formatPrice(sess.Selected.Price))
		if addr := sess.Collected["address"]; addr != "" {
			fmt.Fprintf(&state, "[Have address: %s]\n[READY TO ORDER - User just needs to confirm]\n", addr)
		} else {
			state.WriteString("[Need address]\n")
		}
	}

	text, err := a.gen.Generate(ctx, GenRequest{
		Query:        query,
		Context:      convContext,
		StateContext: state.String(),
		UserEmail:    sess.UserEmail,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("generate reply: %w", err)
	}
	return Reply{Text: text, Agent: "Supervisor"}, nil
}

// loadProfile pulls the buyer's previous-visit summary once per session so
// the generator can greet returning buyers with context.
func (a *Service) loadProfile(ctx context.Context, sess *conversation.Session) {
	if sess.ProfileLoaded {
		return
	}
	sess.ProfileLoaded = true

	profile, err := a.inventory.UserProfile(ctx, sess.UserEmail)
	if errors.Is(err, catalog.ErrNotFound) {
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("component", "advisor").Str("user", sess.UserEmail).Msg("profile lookup failed")
		return
	}
	sess.ProfileSummary = profile.RecentSummary
}
