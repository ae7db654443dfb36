package ai

import (
	"strings"

	"replyflow/internal/core"
)

type triggerRule struct {
	category core.Category
	words    []string
	tag      string
	workflow string
}

var triggerRules = []triggerRule{
	{core.CategoryLead, []string{"interested", "price", "buy", "info"}, "hot_lead", "lead_nurture"},
	{core.CategoryComplaint, []string{"help", "problem", "issue"}, "needs_support", "customer_service"},
	{core.CategoryPraise, nil, "happy_customer", "testimonial_request"},
	{"", []string{"course", "program", "coaching", "consultation"}, "high_value_prospect", "sales_followup"},
}

// DetectTriggers returns the union of CRM tags and workflows implied by the category and by
// words found in the comment or the reply.
func DetectTriggers(comment, reply string, category core.Category) core.Triggers {
	combined := strings.ToLower(comment + " " + reply)

	triggers := core.Triggers{Tags: []string{}, Workflows: []string{}}

	for _, rule := range triggerRules {
		if !rule.matches(combined, category) {
			continue
		}
		triggers.Tags = append(triggers.Tags, rule.tag)
		triggers.Workflows = append(triggers.Workflows, rule.workflow)
	}

	return triggers
}

func (r triggerRule) matches(text string, category core.Category) bool {
	if r.category != "" && r.category == category {
		return true
	}
	for _, word := range r.words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
