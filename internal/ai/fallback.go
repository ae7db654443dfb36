package ai

import "replyflow/internal/core"

var fallbackReplies = map[core.Category]string{
	core.CategoryPraise:    "Thank you so much for your kind words! 🙏",
	core.CategoryQuestion:  "Great question! Let me get back to you on this.",
	core.CategoryLead:      "Thanks for your interest! Please check the link in bio for more details.",
	core.CategoryComplaint: "I appreciate your feedback and want to help. Please DM me so we can resolve this.",
	core.CategoryGeneral:   "Thanks for being part of this community! 🙌",
}

const defaultFallbackReply = "Thanks for your comment!"

func FallbackText(category core.Category) string {
	if text, ok := fallbackReplies[category]; ok {
		return text
	}
	return defaultFallbackReply
}

// Fallback is the reply used when generation fails. It always needs a human.
func Fallback(req core.ReplyRequest) core.GeneratedReply {
	text := FallbackText(req.Category)

	return core.GeneratedReply{
		Text:          text,
		Confidence:    fallbackConfidence,
		Triggers:      DetectTriggers(req.Text, text, req.Category),
		NeedsApproval: true,
		Model:         MethodFallback,
	}
}

// FallbackClassification is used when a comment cannot be classified.
func FallbackClassification(reason string) core.Classification {
	return core.Classification{
		Category:   core.CategoryGeneral,
		Confidence: fallbackConfidence,
		Method:     MethodFallback,
		Reasoning:  reason,
	}
}

func NeutralSentiment() core.SentimentAnalysis {
	return core.SentimentAnalysis{
		Sentiment: "neutral",
		Score:     0.5,
		Emotions:  []string{"unknown"},
	}
}
