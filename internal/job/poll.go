package job

import (
	"context"
	"fmt"
	"time"

	"github.com/jwulff/recite/internal/api"
)

// DefaultInterval is the fixed delay between status polls.
const DefaultInterval = 5 * time.Second

// Fetcher retrieves the status of one job. *api.Client satisfies it.
type Fetcher interface {
	Status(ctx context.Context, orderID string) (api.StatusResponse, error)
}

// Poll queries the status of orderID every interval until the job is terminal
// or ctx is done. onChange, if non-nil, sees the initial Processing job and
// every subsequent snapshot. The returned error is the fetch error that failed
// the job, or ctx.Err() on cancellation.
func Poll(ctx context.Context, f Fetcher, orderID string, interval time.Duration, onChange func(Job)) (Job, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	j := Start(orderID)
	notify(onChange, j)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return j, ctx.Err()
		case <-ticker.C:
		}

		resp, err := f.Status(ctx, orderID)
		if err != nil {
			if ctx.Err() != nil {
				return j, ctx.Err()
			}
			j = j.Fail()
			notify(onChange, j)
			return j, fmt.Errorf("poll %s: %w", orderID, err)
		}
		j = j.Apply(resp)
		notify(onChange, j)
		if j.Terminal() {
			return j, nil
		}
	}
}

func notify(fn func(Job), j Job) {
	if fn != nil {
		fn(j)
	}
}
