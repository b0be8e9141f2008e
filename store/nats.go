package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// NATS is a ModelStore backed by a NATS JetStream ObjectStore bucket.
//
// It lets several analysis processes share one model registry: a training
// job persists the per-fold models and a later application job reloads
// them by method name.
type NATS struct {
	obs jetstream.ObjectStore
}

var _ ModelStore = (*NATS)(nil)

// NewNATS creates or opens the named ObjectStore bucket.
//
// Creation races between concurrent processes are handled by retrying and
// falling back to opening the existing bucket.
//
// Parameters:
//   - ctx: Context for the bucket setup calls
//   - js: JetStream context
//   - bucket: ObjectStore bucket name (e.g. "crossfold-models")
//
// Returns:
//   - *NATS: Store bound to the bucket
//   - error: Setup error after retries
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	st, err := store.NewNATS(ctx, js, "crossfold-models")
func NewNATS(ctx context.Context, js jetstream.JetStream, bucket string) (*NATS, error) {
	obs, err := ensureObjectStore(ctx, js, jetstream.ObjectStoreConfig{
		Bucket:      bucket,
		Description: "crossfold per-fold model registry",
	}, 3)
	if err != nil {
		return nil, err
	}

	return &NATS{obs: obs}, nil
}

// ensureObjectStore creates or opens an ObjectStore bucket with retry.
func ensureObjectStore(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.ObjectStoreConfig,
	maxRetries int,
) (jetstream.ObjectStore, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		obs, err := js.CreateObjectStore(ctx, config)
		if err == nil {
			return obs, nil
		}

		// Another process created it first: open instead.
		if errors.Is(err, jetstream.ErrBucketExists) {
			obs, err := js.ObjectStore(ctx, config.Bucket)
			if err == nil {
				return obs, nil
			}
			lastErr = err
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}

	return nil, fmt.Errorf("ensure object store %q: %w", config.Bucket, lastErr)
}

// Put stores data under key.
func (n *NATS) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if _, err := n.obs.PutBytes(ctx, key, data); err != nil {
		return fmt.Errorf("object store put %q: %w", key, err)
	}

	return nil
}

// Get returns the data stored under key.
func (n *NATS) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := n.obs.GetBytes(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("object store get %q: %w", key, err)
	}

	return data, nil
}

// Keys lists all stored keys.
func (n *NATS) Keys(ctx context.Context) ([]string, error) {
	infos, err := n.obs.List(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoObjectsFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("object store list: %w", err)
	}

	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Name)
	}

	return keys, nil
}
