// Package natskv stores orders and daily counters in NATS JetStream
// key-value buckets. Every write is a compare-and-set on the entry revision.
package natskv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/YelzhanWeb/dinehub/internal/config"
)

var (
	errKeyMissing       = errors.New("key not found")
	errRevisionMismatch = errors.New("revision mismatch")
)

// Bucket is the part of a KV bucket the store uses.
type Bucket interface {
	Get(ctx context.Context, key string) ([]byte, uint64, error)
	Create(ctx context.Context, key string, value []byte) (uint64, error)
	Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

type jsBucket struct {
	kv jetstream.KeyValue
}

// Buckets holds the connection and the two buckets opened from config.
type Buckets struct {
	conn     *nats.Conn
	Orders   Bucket
	Counters Bucket
}

func Connect(ctx context.Context, cfg config.NATSConfig) (*Buckets, error) {
	nc, err := nats.Connect(cfg.URL, nats.Name("dinehub"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	orders, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.OrdersBucket,
		Description: "dinehub orders and status history",
		History:     1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to open bucket %s: %w", cfg.OrdersBucket, err)
	}

	counters, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.CounterBucket,
		Description: "dinehub daily order and token counters",
		History:     1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to open bucket %s: %w", cfg.CounterBucket, err)
	}

	return &Buckets{
		conn:     nc,
		Orders:   &jsBucket{kv: orders},
		Counters: &jsBucket{kv: counters},
	}, nil
}

func (b *Buckets) Close() {
	b.conn.Close()
}

func (b *jsBucket) Get(ctx context.Context, key string) ([]byte, uint64, error) {
	entry, err := b.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return nil, 0, errKeyMissing
		}
		return nil, 0, err
	}
	return entry.Value(), entry.Revision(), nil
}

func (b *jsBucket) Create(ctx context.Context, key string, value []byte) (uint64, error) {
	rev, err := b.kv.Create(ctx, key, value)
	if errors.Is(err, jetstream.ErrKeyExists) {
		return 0, errRevisionMismatch
	}
	return rev, err
}

func (b *jsBucket) Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error) {
	rev, err := b.kv.Update(ctx, key, value, revision)
	if errors.Is(err, jetstream.ErrKeyExists) {
		return 0, errRevisionMismatch
	}
	return rev, err
}

func (b *jsBucket) Delete(ctx context.Context, key string) error {
	return b.kv.Delete(ctx, key)
}

func (b *jsBucket) Keys(ctx context.Context, prefix string) ([]string, error) {
	lister, err := b.kv.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	defer lister.Stop()

	var keys []string
	for k := range lister.Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
