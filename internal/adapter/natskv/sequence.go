package natskv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

const maxCounterRetries = 20

type sequence struct {
	bucket Bucket
	now    func() time.Time
}

// NewSequence keeps one counter key per UTC day and scope, e.g.
// "20260314.orders" and "20260314.outlet.burger-barn".
func NewSequence(bucket Bucket, now func() time.Time) interfaces.SequenceGenerator {
	if now == nil {
		now = time.Now
	}
	return &sequence{bucket: bucket, now: now}
}

func (s *sequence) Next(ctx context.Context, outletID string) (domain.Ticket, error) {
	now := s.now().UTC()
	day := now.Format("20060102")

	orderSeq, err := s.increment(ctx, day+".orders")
	if err != nil {
		return domain.Ticket{}, err
	}
	token, err := s.increment(ctx, day+".outlet."+outletID)
	if err != nil {
		return domain.Ticket{}, err
	}

	return domain.Ticket{
		OrderNumber: domain.FormatOrderNumber(now, orderSeq),
		TokenNumber: token,
	}, nil
}

// increment retries when another writer got there first.
func (s *sequence) increment(ctx context.Context, key string) (int, error) {
	for attempt := 0; attempt < maxCounterRetries; attempt++ {
		data, rev, err := s.bucket.Get(ctx, key)
		switch {
		case errors.Is(err, errKeyMissing):
			if _, err := s.bucket.Create(ctx, key, []byte("1")); err == nil {
				return 1, nil
			} else if !errors.Is(err, errRevisionMismatch) {
				return 0, fmt.Errorf("failed to create counter %s: %w", key, err)
			}
			continue
		case err != nil:
			return 0, fmt.Errorf("failed to read counter %s: %w", key, err)
		}

		current, err := strconv.Atoi(string(data))
		if err != nil {
			return 0, fmt.Errorf("corrupt counter %s: %w", key, err)
		}

		next := current + 1
		if _, err := s.bucket.Update(ctx, key, []byte(strconv.Itoa(next)), rev); err == nil {
			return next, nil
		} else if !errors.Is(err, errRevisionMismatch) {
			return 0, fmt.Errorf("failed to bump counter %s: %w", key, err)
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
	return 0, fmt.Errorf("counter %s: too much contention", key)
}
