package ai

import (
	"strings"

	"replyflow/internal/core"
)

const keywordConfidence = 0.85

type keywordRule struct {
	category core.Category
	keywords []string
}

// Checked in order, the first category with a match wins.
var keywordRules = []keywordRule{
	{core.CategoryLead, []string{"interested", "how much", "price", "buy", "want", "need", "sign up"}},
	{core.CategoryPraise, []string{"amazing", "great", "awesome", "love", "fantastic", "thank you"}},
	{core.CategoryQuestion, []string{"?", "how", "what", "when", "where", "why", "can you"}},
	{core.CategoryComplaint, []string{"problem", "issue", "wrong", "bad", "terrible", "hate", "disappointed"}},
	{core.CategorySpam, []string{"click here", "follow me", "check my", "dm me", "link in bio"}},
}

// ClassifyByKeywords matches text against the keyword tables using plain substring
// containment on the lowercased text.
func ClassifyByKeywords(text string) (core.Classification, bool) {
	lower := strings.ToLower(text)

	for _, rule := range keywordRules {
		var matched []string
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				matched = append(matched, keyword)
			}
		}

		if len(matched) > 0 {
			return core.Classification{
				Category:        rule.category,
				Confidence:      keywordConfidence,
				Method:          MethodKeyword,
				MatchedKeywords: matched,
			}, true
		}
	}

	return core.Classification{}, false
}
