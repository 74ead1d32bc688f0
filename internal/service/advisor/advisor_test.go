package advisor

import (
	"context"
	"strings"
	"testing"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/catalog"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/service/conversation"
)

func setupAdvisor(t *testing.T) (*Service, *conversation.Service) {
	t.Helper()
	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("catalog.Open err: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	conv := conversation.NewService(store, nil, 6)
	return New(store, conv, nil), conv
}

func TestRespondSearchThenSelectThenOrder(t *testing.T) {
	adv, conv := setupAdvisor(t)
	ctx := context.Background()
	sess := conv.GetOrCreate("a@b.com", "")

	reply, err := adv.Respond(ctx, sess, "show me toyota suvs")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if reply.Agent != "CarSearch" {
		t.Fatalf("expected CarSearch, got %s", reply.Agent)
	}
	if len(sess.LastResults) == 0 {
		t.Fatal("expected stored search results")
	}

	reply, err = adv.Respond(ctx, sess, "1")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if reply.Agent != "SelectionHandler" {
		t.Fatalf("expected SelectionHandler, got %s", reply.Agent)
	}
	if sess.Selected == nil || sess.Stage != "vehicle_selected" || sess.Awaiting != "address" {
		t.Fatalf("selection did not update session: %+v", sess)
	}

	reply, err = adv.Respond(ctx, sess, "address: 12 High Street, London, name: Alice")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if reply.Agent != "OrderHandler" {
		t.Fatalf("expected OrderHandler, got %s", reply.Agent)
	}
	if !sess.Ordered() || sess.Stage != "ordered" {
		t.Fatalf("order did not update session: %+v", sess)
	}
	if !strings.Contains(reply.Text, "Order placed successfully!") {
		t.Fatalf("unexpected order reply:\n%s", reply.Text)
	}
}

func TestRespondConfirmationWithoutAddressAsks(t *testing.T) {
	adv, conv := setupAdvisor(t)
	ctx := context.Background()
	sess := conv.GetOrCreate("a@b.com", "")

	sess.Selected = &catalog.Car{Make: "Honda", Model: "Civic", Year: 2021, Price: 23800}

	reply, err := adv.Respond(ctx, sess, "yes, buy it")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if sess.Ordered() {
		t.Fatal("order must not be placed without an address")
	}
	if sess.Awaiting != "address" {
		t.Fatalf("expected awaiting address, got %q", sess.Awaiting)
	}
	if !strings.Contains(reply.Text, "delivery address") {
		t.Fatalf("unexpected reply:\n%s", reply.Text)
	}
}

func TestRespondSelectionOutOfRange(t *testing.T) {
	adv, conv := setupAdvisor(t)
	sess := conv.GetOrCreate("a@b.com", "")
	sess.LastResults = []catalog.Car{{Make: "Ford", Model: "F-150"}}

	reply, err := adv.Respond(context.Background(), sess, "9")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if !strings.Contains(reply.Text, "out of range") {
		t.Fatalf("unexpected reply: %s", reply.Text)
	}
	if sess.Selected != nil {
		t.Fatal("out of range selection must not select")
	}
}

func TestRespondNumberWithoutResultsFallsThrough(t *testing.T) {
	adv, conv := setupAdvisor(t)
	sess := conv.GetOrCreate("a@b.com", "")

	reply, err := adv.Respond(context.Background(), sess, "42")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if reply.Agent == "SelectionHandler" {
		t.Fatal("no previous results, selection handler must not claim the turn")
	}
}

func TestRespondScriptedFallback(t *testing.T) {
	adv, conv := setupAdvisor(t)
	sess := conv.GetOrCreate("a@b.com", "")

	reply, err := adv.Respond(context.Background(), sess, "hello")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if reply.Agent != "Supervisor" {
		t.Fatalf("expected Supervisor, got %s", reply.Agent)
	}
	if reply.Text == "" {
		t.Fatal("expected a scripted greeting")
	}
}

func TestRespondGreetsReturningBuyer(t *testing.T) {
	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("catalog.Open err: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	// A previous session left a summary behind for this buyer.
	err = store.SaveSummary(ctx, catalog.Summary{
		SessionID: "earlier-session",
		UserEmail: "a@b.com",
		Text:      "Was comparing the Tesla Model 3 and the Nissan Leaf.",
	})
	if err != nil {
		t.Fatalf("SaveSummary err: %v", err)
	}

	conv := conversation.NewService(store, nil, 6)
	adv := New(store, conv, nil)
	sess := conv.GetOrCreate("a@b.com", "")

	reply, err := adv.Respond(ctx, sess, "hello")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if sess.ProfileSummary == "" {
		t.Fatal("expected the previous-visit summary on the session")
	}
	if !strings.Contains(reply.Text, "Welcome back") {
		t.Fatalf("expected a returning-buyer greeting, got:\n%s", reply.Text)
	}
}

func TestRespondFirstVisitHasNoProfile(t *testing.T) {
	adv, conv := setupAdvisor(t)
	sess := conv.GetOrCreate("new@b.com", "")

	reply, err := adv.Respond(context.Background(), sess, "hello")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if sess.ProfileSummary != "" {
		t.Fatalf("unexpected profile summary: %q", sess.ProfileSummary)
	}
	if strings.Contains(reply.Text, "Welcome back") {
		t.Fatalf("first visit must not be greeted as returning:\n%s", reply.Text)
	}
}

func TestRespondDoesNotDuplicateSessionOrder(t *testing.T) {
	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("catalog.Open err: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	conv := conversation.NewService(store, nil, 6)
	adv := New(store, conv, nil)

	// Order placed, then the server restarts; the client's sticky token
	// recreates the session with the same id and the buyer confirms again.
	existingID, err := store.CreateOrder(ctx, catalog.Order{
		SessionID:    "sticky-token",
		UserEmail:    "a@b.com",
		BuyerName:    "Alice",
		BuyerAddress: "12 High Street, London",
		Car:          catalog.Car{Make: "Honda", Model: "Civic", Year: 2021, Price: 23800},
	})
	if err != nil {
		t.Fatalf("CreateOrder err: %v", err)
	}

	sess := conv.GetOrCreate("a@b.com", "sticky-token")
	sess.Selected = &catalog.Car{Make: "Honda", Model: "Civic", Year: 2021, Price: 23800}
	sess.Collected["address"] = "12 High Street, London"

	reply, err := adv.Respond(ctx, sess, "confirm")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if !strings.Contains(reply.Text, "already have an order") {
		t.Fatalf("expected the existing order to be reported:\n%s", reply.Text)
	}
	if sess.OrderID != existingID {
		t.Fatalf("session should adopt the existing order id %s, got %s", existingID, sess.OrderID)
	}

	if _, err := store.OrderBySession(ctx, "sticky-token"); err != nil {
		t.Fatalf("OrderBySession err: %v", err)
	}
}

func TestRespondCollectsContactInfo(t *testing.T) {
	adv, conv := setupAdvisor(t)
	sess := conv.GetOrCreate("a@b.com", "")

	_, err := adv.Respond(context.Background(), sess, "my details - name: Bob, phone: 0712345678")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if sess.Collected["name"] != "Bob" {
		t.Fatalf("collected = %v", sess.Collected)
	}
}
