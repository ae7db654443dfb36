package retry

import (
	"context"
	"time"
)

type fn func() error

// Do calls f until it succeeds, attempts are exhausted or ctx is done. The delay doubles
// after every failed attempt. The last error of f is returned.
func Do(ctx context.Context, attempts int, delay time.Duration, f fn) error {
	var err error

	for attempt := 0; attempt < attempts; attempt++ {
		err = f()
		if err == nil {
			return nil
		}

		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}

	return err
}
