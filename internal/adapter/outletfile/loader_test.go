package outletfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/domain"
)

const outletsYAML = `
outlets:
  - id: burger-barn
    name: Burger Barn
    cuisine: American
    rating: 4.3
    avg_prep_minutes: 10
    menu:
      - id: burger
        name: Burger
        price_inr: "150"
      - id: fries
        name: Fries
        price_inr: 79.50
  - id: chai-point
    name: Chai Point
    open: false
`

func TestParse(t *testing.T) {
	outlets, err := Parse([]byte(outletsYAML))
	require.NoError(t, err)
	require.Len(t, outlets, 2)

	bb := outlets[0]
	assert.Equal(t, "Burger Barn", bb.Name)
	assert.True(t, bb.Open)
	assert.Equal(t, 10, bb.AvgPrepMinutes)
	require.Len(t, bb.Menu, 2)
	assert.Equal(t, domain.Rupees(150), bb.Menu[0].PriceINR)
	assert.Equal(t, domain.Money(7950), bb.Menu[1].PriceINR)

	assert.False(t, outlets[1].Open)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"duplicate outlet": "outlets:\n  - {id: a, name: A}\n  - {id: a, name: B}\n",
		"missing name":     "outlets:\n  - {id: a}\n",
		"duplicate item": "outlets:\n  - id: a\n    name: A\n    menu: [{id: x, name: X, price_inr: '1'}]\n" +
			"  - id: b\n    name: B\n    menu: [{id: x, name: X, price_inr: '1'}]\n",
		"bad price": "outlets:\n  - id: a\n    name: A\n    menu: [{id: x, name: X, price_inr: 'free'}]\n",
		"not yaml":  "outlets: [",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

type recordingReplacer struct {
	mu      sync.Mutex
	outlets []domain.Outlet
}

func (r *recordingReplacer) Replace(o []domain.Outlet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outlets = o
}

func (r *recordingReplacer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outlets)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outlets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("outlets: []\n"), 0o644))

	target := &recordingReplacer{}
	w := NewWatcher(path, target, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher a moment to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(outletsYAML), 0o644))

	assert.Eventually(t, func() bool { return target.count() == 2 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
