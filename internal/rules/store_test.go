package rules_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"smishguard/internal/rules"
	"smishguard/pkg/logger"
)

func newStore() *rules.Store {
	return rules.NewStore(logger.NewDefault())
}

func TestAddValidation(t *testing.T) {
	s := newStore()

	if _, err := s.Add(rules.Rule{Action: "trust", Domain: "example.com"}); !errors.Is(err, rules.ErrBadAction) {
		t.Fatalf("expected ErrBadAction, got %v", err)
	}
	if _, err := s.Add(rules.Rule{Action: rules.ActionAllow}); !errors.Is(err, rules.ErrEmptyRule) {
		t.Fatalf("expected ErrEmptyRule, got %v", err)
	}

	r, err := s.Add(rules.Rule{Action: rules.ActionAllow, Domain: "  Example.COM "})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if r.ID == uuid.Nil {
		t.Error("expected assigned ID")
	}
	if r.Domain != "example.com" {
		t.Errorf("expected normalized domain, got %q", r.Domain)
	}
	if r.CreatedAt.IsZero() {
		t.Error("expected CreatedAt set")
	}
}

func TestAddDuplicateID(t *testing.T) {
	s := newStore()
	id := uuid.New()

	if _, err := s.Add(rules.Rule{ID: id, Action: rules.ActionAllow, Domain: "a.com"}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := s.Add(rules.Rule{ID: id, Action: rules.ActionBlock, Domain: "b.com"}); !errors.Is(err, rules.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestCheckDomainMatch(t *testing.T) {
	s := newStore()
	if _, err := s.Add(rules.Rule{Action: rules.ActionAllow, Domain: "mybank.com"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if got := s.Check([]string{"other.com", "MyBank.com"}, ""); got != rules.ActionAllow {
		t.Errorf("expected allow, got %q", got)
	}
	if got := s.Check([]string{"other.com"}, ""); got != rules.ActionNone {
		t.Errorf("expected no action, got %q", got)
	}
}

func TestCheckSenderMatch(t *testing.T) {
	s := newStore()
	if _, err := s.Add(rules.Rule{Action: rules.ActionBlock, Sender: "AX-SPAMCO"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if got := s.Check(nil, "ax-spamco"); got != rules.ActionBlock {
		t.Errorf("expected block, got %q", got)
	}
	if got := s.Check(nil, "AX-OTHER"); got != rules.ActionNone {
		t.Errorf("expected no action, got %q", got)
	}
}

func TestCheckBlockWinsOverAllow(t *testing.T) {
	s := newStore()
	if _, err := s.Add(rules.Rule{Action: rules.ActionAllow, Domain: "shared.com"}); err != nil {
		t.Fatalf("add allow: %v", err)
	}
	if _, err := s.Add(rules.Rule{Action: rules.ActionBlock, Sender: "BADGUY"}); err != nil {
		t.Fatalf("add block: %v", err)
	}

	if got := s.Check([]string{"shared.com"}, "BADGUY"); got != rules.ActionBlock {
		t.Errorf("expected block to win, got %q", got)
	}
}

func TestDeleteAndList(t *testing.T) {
	s := newStore()

	first, err := s.Add(rules.Rule{Action: rules.ActionAllow, Domain: "first.com", CreatedAt: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	second, err := s.Add(rules.Rule{Action: rules.ActionBlock, Domain: "second.com"})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Error("expected rules ordered by creation time")
	}

	if err := s.Delete(first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(first.ID); !errors.Is(err, rules.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(s.List()) != 1 {
		t.Fatalf("expected 1 rule left")
	}
}
