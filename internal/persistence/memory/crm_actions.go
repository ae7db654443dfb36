package memory

import (
	"context"
	"time"

	"replyflow/internal/core"
)

type CRMActions struct {
	store *Store
}

func (r *CRMActions) Create(_ context.Context, action *core.CRMAction) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	action.ID = s.id()
	action.CreatedAt = time.Now()
	s.crmActions = append(s.crmActions, *action)
	return nil
}

func (r *CRMActions) ListByComment(_ context.Context, commentID uint) ([]core.CRMAction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var actions []core.CRMAction
	for _, action := range s.crmActions {
		if action.CommentID == commentID {
			actions = append(actions, action)
		}
	}
	return actions, nil
}
