// Package retry runs operations with exponential backoff and jitter.
//
// It is used to ride out transient failures of external dependencies
// during startup, such as a Redis server that is still coming up:
//
//	err := retry.Do(ctx, retry.Config{Attempts: 4}, func(ctx context.Context) error {
//	    return client.Ping(ctx).Err()
//	})
//
// An operation returns Permanent(err) to stop retrying early.
package retry
