package outlet

import (
	"context"

	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

// ActiveCounter reports how many non-terminal orders an outlet has.
type ActiveCounter interface {
	CountActive(ctx context.Context, outletID string) (int, error)
}

// QueueEstimator implements the outlet wait-time policy:
// avg_prep_minutes + perOrder × active orders. Anything it cannot resolve
// falls back to the configured default.
type QueueEstimator struct {
	outlets     interfaces.OutletDirectory
	counter     ActiveCounter
	perOrder    int
	defaultWait int
}

func NewQueueEstimator(outlets interfaces.OutletDirectory, counter ActiveCounter, perOrderMinutes, defaultMinutes int) *QueueEstimator {
	return &QueueEstimator{
		outlets:     outlets,
		counter:     counter,
		perOrder:    perOrderMinutes,
		defaultWait: defaultMinutes,
	}
}

func (e *QueueEstimator) Estimate(ctx context.Context, outletID string) (int, error) {
	o, ok := e.outlets.FindOutlet(outletID)
	if !ok || o.AvgPrepMinutes <= 0 {
		return e.defaultWait, nil
	}

	active, err := e.counter.CountActive(ctx, outletID)
	if err != nil {
		return e.defaultWait, nil
	}

	return o.AvgPrepMinutes + e.perOrder*active, nil
}
