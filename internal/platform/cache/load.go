package cache

import "context"

// Typed wraps a typed fetch function as a Fetcher.
func Typed[T any](fetch func(ctx context.Context) (T, error)) Fetcher {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

// Value extracts typed data from a snapshot.
func Value[T any](snap Snapshot) (T, bool) {
	var zero T
	if !snap.HasData {
		return zero, false
	}
	v, ok := snap.Data.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Load fetches key through c and returns typed data. Prior data is returned
// alongside a transient error; without data, or on a permanent error, the
// error is returned. A disabled entry with no data yields ok=false and no error.
func Load[T any](ctx context.Context, c *Client, key string, fetch func(ctx context.Context) (T, error), optsFn OptionsFunc) (T, Snapshot, error) {
	var zero T

	snap, err := c.Load(ctx, key, Typed(fetch), optsFn)
	if err != nil {
		return zero, snap, err
	}
	if snap.Err != nil && (!snap.HasData || c.isPermanent(snap.Err)) {
		return zero, snap, snap.Err
	}

	v, _ := Value[T](snap)
	return v, snap, nil
}
