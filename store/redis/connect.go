package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// Connect opens a client for addr and pings it with exponential backoff
// until it answers or attempts run out.
func Connect(ctx context.Context, addr string, attempts uint64) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})

	backoff := retry.WithMaxRetries(attempts, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, backendError("connect", err)
	}
	return client, nil
}
