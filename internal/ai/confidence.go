package ai

import (
	"strings"

	"replyflow/internal/core"
)

const (
	baseConfidence     = 0.7
	fallbackConfidence = 0.3
)

// ReplyConfidence scores a generated reply, result is within [0.1, 1].
func ReplyConfidence(category core.Category, reply string) float64 {
	confidence := baseConfidence

	switch category {
	case core.CategoryPraise, core.CategoryGeneral:
		confidence += 0.15
	case core.CategoryLead, core.CategoryComplaint:
		confidence -= 0.1
	}

	words := len(strings.Fields(reply))
	if words >= 20 && words <= 50 {
		confidence += 0.05
	}

	return min(max(confidence, 0.1), 1.0)
}
