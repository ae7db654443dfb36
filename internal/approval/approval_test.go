package approval_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"replyflow/internal/approval"
	"replyflow/internal/core"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		category   core.Category
		confidence float64
		want       core.ReplyStatus
	}{
		{"lead never auto approved", core.CategoryLead, 0.99, core.ReplyStatusPending},
		{"complaint never auto approved", core.CategoryComplaint, 1.0, core.ReplyStatusPending},
		{"confident praise", core.CategoryPraise, 0.85, core.ReplyStatusAutoApproved},
		{"praise at threshold", core.CategoryPraise, 0.8, core.ReplyStatusAutoApproved},
		{"unsure praise", core.CategoryPraise, 0.79, core.ReplyStatusPending},
		{"confident general", core.CategoryGeneral, 0.9, core.ReplyStatusAutoApproved},
		{"question", core.CategoryQuestion, 0.95, core.ReplyStatusPending},
		{"spam", core.CategorySpam, 0.95, core.ReplyStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, approval.Decide(tt.category, tt.confidence, approval.DefaultThreshold))
		})
	}
}

func TestPromotable(t *testing.T) {
	t.Parallel()

	require.True(t, approval.Promotable(core.Reply{Status: core.ReplyStatusPending, Confidence: 0.82}, 0.8))
	require.False(t, approval.Promotable(core.Reply{Status: core.ReplyStatusPending, Confidence: 0.5}, 0.8))
	require.False(t, approval.Promotable(core.Reply{Status: core.ReplyStatusRejected, Confidence: 0.9}, 0.8))
}
