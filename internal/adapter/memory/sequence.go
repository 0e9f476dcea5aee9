package memory

import (
	"context"
	"sync"
	"time"

	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

type sequence struct {
	mu     sync.Mutex
	now    func() time.Time
	day    string
	orders int
	tokens map[string]int
}

// NewSequence restarts both counters every UTC day. Order numbers are
// global, token numbers are counted per outlet.
func NewSequence(now func() time.Time) interfaces.SequenceGenerator {
	if now == nil {
		now = time.Now
	}
	return &sequence{now: now, tokens: make(map[string]int)}
}

func (s *sequence) Next(ctx context.Context, outletID string) (domain.Ticket, error) {
	now := s.now().UTC()
	day := now.Format("20060102")

	s.mu.Lock()
	defer s.mu.Unlock()

	if day != s.day {
		s.day = day
		s.orders = 0
		s.tokens = make(map[string]int)
	}

	s.orders++
	s.tokens[outletID]++

	return domain.Ticket{
		OrderNumber: domain.FormatOrderNumber(now, s.orders),
		TokenNumber: s.tokens[outletID],
	}, nil
}
