package portal

import (
	"context"
	"sync"
)

// Simulated substitutes every outbound call with a canned success. It
// lets the reconciliation logic run end to end without touching the
// remote service (the dry-run toggle).
type Simulated struct {
	mu        sync.Mutex
	Existing  map[string]map[string]string // headerID -> iso date -> id
	FailDates map[string]bool              // iso dates whose Submit should fail

	Submitted []Entry
	Fetches   []string
}

func NewSimulated() *Simulated {
	return &Simulated{
		Existing:  map[string]map[string]string{},
		FailDates: map[string]bool{},
	}
}

func (s *Simulated) FetchExisting(ctx context.Context, headerID, cookie string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fetches = append(s.Fetches, headerID)
	existing := make(map[string]string, len(s.Existing[headerID]))
	for date, id := range s.Existing[headerID] {
		existing[date] = id
	}
	return existing, nil
}

func (s *Simulated) Submit(ctx context.Context, e Entry, cookie string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDates[e.Date] {
		return ErrSubmitFailed
	}
	s.Submitted = append(s.Submitted, e)
	return nil
}
