// Package approval decides whether a generated reply may be posted without a human.
package approval

import "replyflow/internal/core"

const DefaultThreshold = 0.8

// Decide returns the initial status of a reply. Leads and complaints always go to a human,
// praise and general comments are auto approved when the reply is confident enough.
func Decide(category core.Category, confidence, threshold float64) core.ReplyStatus {
	switch category {
	case core.CategoryLead, core.CategoryComplaint:
		return core.ReplyStatusPending
	case core.CategoryPraise, core.CategoryGeneral:
		if confidence >= threshold {
			return core.ReplyStatusAutoApproved
		}
	}
	return core.ReplyStatusPending
}

// Promotable reports whether a pending reply may be approved by the sweep.
func Promotable(reply core.Reply, threshold float64) bool {
	return reply.Status == core.ReplyStatusPending && reply.Confidence >= threshold
}
