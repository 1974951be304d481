package rules

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"smishguard/pkg/logger"
)

// Action is the override outcome for a message
type Action string

const (
	ActionNone  Action = ""
	ActionAllow Action = "allow"
	ActionBlock Action = "block"
)

var (
	ErrNotFound    = errors.New("rule not found")
	ErrEmptyRule   = errors.New("rule must set a domain or a sender")
	ErrBadAction   = errors.New("action must be allow or block")
	ErrDuplicateID = errors.New("rule id already exists")
)

// Rule is a user trust decision. Domain rules match a link's registered
// domain; sender rules match the sender identifier exactly, case-insensitive.
type Rule struct {
	ID        uuid.UUID `json:"id"`
	Action    Action    `json:"action"`
	Domain    string    `json:"domain,omitempty"`
	Sender    string    `json:"sender,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store holds override rules in memory. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	rules  map[uuid.UUID]Rule
	logger *logger.Logger
}

// NewStore creates an empty rule store
func NewStore(log *logger.Logger) *Store {
	return &Store{
		rules:  make(map[uuid.UUID]Rule),
		logger: log.WithComponent("rules"),
	}
}

// Add validates and stores a rule, assigning an ID when absent
func (s *Store) Add(r Rule) (Rule, error) {
	if r.Action != ActionAllow && r.Action != ActionBlock {
		return Rule{}, ErrBadAction
	}
	r.Domain = strings.ToLower(strings.TrimSpace(r.Domain))
	r.Sender = strings.TrimSpace(r.Sender)
	if r.Domain == "" && r.Sender == "" {
		return Rule{}, ErrEmptyRule
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[r.ID]; exists {
		return Rule{}, ErrDuplicateID
	}
	s.rules[r.ID] = r
	s.logger.Info().
		Str("rule_id", r.ID.String()).
		Str("action", string(r.Action)).
		Str("domain", r.Domain).
		Msg("rule added")
	return r, nil
}

// Delete removes a rule by ID
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[id]; !exists {
		return ErrNotFound
	}
	delete(s.rules, id)
	return nil
}

// List returns all rules ordered by creation time
func (s *Store) List() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Check resolves the override action for a message given its sender and the
// registered domains of its links. A block rule always wins over an allow
// rule when both match.
func (s *Store) Check(domains []string, sender string) Action {
	s.mu.RLock()
	defer s.mu.RUnlock()

	action := ActionNone
	for _, r := range s.rules {
		if !s.matches(r, domains, sender) {
			continue
		}
		if r.Action == ActionBlock {
			return ActionBlock
		}
		action = ActionAllow
	}
	return action
}

func (s *Store) matches(r Rule, domains []string, sender string) bool {
	if r.Domain != "" {
		for _, d := range domains {
			if strings.EqualFold(d, r.Domain) {
				return true
			}
		}
	}
	if r.Sender != "" && strings.EqualFold(sender, r.Sender) {
		return true
	}
	return false
}
