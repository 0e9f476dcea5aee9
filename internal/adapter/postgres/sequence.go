package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

const globalScope = "orders"

type sequence struct {
	db  DB
	now func() time.Time
}

// NewSequence counts in order_counters, one row per UTC day and scope.
func NewSequence(db DB, now func() time.Time) interfaces.SequenceGenerator {
	if now == nil {
		now = time.Now
	}
	return &sequence{db: db, now: now}
}

func (s *sequence) Next(ctx context.Context, outletID string) (domain.Ticket, error) {
	now := s.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderSeq, err := bump(ctx, tx, day, globalScope)
	if err != nil {
		return domain.Ticket{}, err
	}
	token, err := bump(ctx, tx, day, "outlet:"+outletID)
	if err != nil {
		return domain.Ticket{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Ticket{}, fmt.Errorf("failed to commit counters: %w", err)
	}

	return domain.Ticket{
		OrderNumber: domain.FormatOrderNumber(day, orderSeq),
		TokenNumber: token,
	}, nil
}

func bump(ctx context.Context, tx Tx, day time.Time, scope string) (int, error) {
	query := `
		INSERT INTO order_counters (day, scope, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (day, scope) DO UPDATE SET value = order_counters.value + 1
		RETURNING value
	`
	var value int
	if err := tx.QueryRow(ctx, query, day, scope).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to bump %s counter: %w", scope, err)
	}
	return value, nil
}
