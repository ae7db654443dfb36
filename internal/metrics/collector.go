package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"replyflow/internal/core"
)

const collectInterval = 15 * time.Second

var (
	repliesByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "replyflow_replies",
		Help: "Number of stored replies per status.",
	}, []string{"status"})
)

var statuses = []core.ReplyStatus{
	core.ReplyStatusPending,
	core.ReplyStatusApproved,
	core.ReplyStatusRejected,
	core.ReplyStatusAutoApproved,
	core.ReplyStatusPosted,
}

type Collector struct {
	Logger  *slog.Logger
	Replies core.ReplyRepository
}

func (c *Collector) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "metrics.Collector")
	return nil
}

func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(collectInterval)
	defer ticker.Stop()

	for {
		err := c.Collect(ctx)
		if err != nil {
			c.Logger.Warn("Failed to collect metrics", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Collector) Collect(ctx context.Context) error {
	counts, err := c.Replies.CountByStatus(ctx)
	if err != nil {
		return err
	}

	for _, status := range statuses {
		repliesByStatus.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
	return nil
}
