package processing

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"replyflow/internal/core"
)

// runCRM upserts the commenter as a CRM contact and fires the triggered workflows. Failures
// end up in the result, never in the returned error.
func (p *Processor) runCRM(ctx context.Context, raw core.RawComment, comment *core.Comment, triggers core.Triggers) core.CRMResult {
	logger := p.Logger.With("platform", raw.Platform, "comment_id", raw.ExternalID)

	contactResult, err := p.CRM.CreateOrUpdateContact(ctx, core.Contact{
		Name:       raw.Author,
		Platform:   raw.Platform,
		PlatformID: raw.AuthorID,
		Tags:       triggers.Tags,
		CustomFields: map[string]any{
			"last_comment": raw.Content,
			"comment_type": comment.Category,
			"platform":     raw.Platform,
		},
	})
	if err != nil || !contactResult.Success {
		message := contactResult.Error
		if err != nil {
			message = err.Error()
		}
		logger.Warn("CRM contact upsert failed", "error", message)
		return core.CRMResult{Success: false, Error: message}
	}

	result := core.CRMResult{
		Success:   true,
		ContactID: contactResult.ContactID,
	}

	for _, workflow := range triggers.Workflows {
		workflowResult, err := p.CRM.TriggerWorkflow(ctx, workflow, contactResult.ContactID, map[string]any{
			"comment":    raw.Content,
			"platform":   raw.Platform,
			"comment_id": comment.ID,
		})

		status := core.CRMActionStatusExecuted
		response := map[string]any{"mock": workflowResult.Mock}
		if err != nil || !workflowResult.Success {
			status = core.CRMActionStatusFailed
			response["error"] = workflowResult.Error
			logger.Warn("CRM workflow failed", "workflow", workflow, "error", workflowResult.Error)
		} else {
			result.WorkflowsTriggered++
		}

		p.recordAction(ctx, &core.CRMAction{
			CommentID:    comment.ID,
			ActionType:   core.CRMActionWorkflowTriggered,
			ContactID:    contactResult.ContactID,
			WorkflowName: workflow,
			Status:       status,
			ResponseData: response,
		})
	}

	for _, tag := range triggers.Tags {
		p.recordAction(ctx, &core.CRMAction{
			CommentID:  comment.ID,
			ActionType: core.CRMActionTagAdded,
			ContactID:  contactResult.ContactID,
			Tags:       datatypes.NewJSONType([]string{tag}),
			Status:     core.CRMActionStatusExecuted,
		})
		result.TagsAdded++
	}

	return result
}

func (p *Processor) recordAction(ctx context.Context, action *core.CRMAction) {
	now := time.Now()
	action.ExecutedAt = &now

	err := p.CRMActions.Create(ctx, action)
	if err != nil {
		p.Logger.Warn("Failed to record CRM action", "action", action.ActionType, "error", err)
	}
}
