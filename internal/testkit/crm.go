package testkit

import (
	"context"
	"sync"

	"replyflow/internal/core"
)

type CRM struct {
	mu sync.Mutex

	ContactErr  error
	WorkflowErr error

	Contacts  []core.Contact
	Workflows []string
}

func (f *CRM) CreateOrUpdateContact(_ context.Context, contact core.Contact) (core.ContactResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ContactErr != nil {
		return core.ContactResult{Error: f.ContactErr.Error()}, f.ContactErr
	}

	f.Contacts = append(f.Contacts, contact)
	return core.ContactResult{Success: true, ContactID: "contact-1", IsNew: true}, nil
}

func (f *CRM) TriggerWorkflow(_ context.Context, name, _ string, _ map[string]any) (core.WorkflowResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.WorkflowErr != nil {
		return core.WorkflowResult{Error: f.WorkflowErr.Error()}, f.WorkflowErr
	}

	f.Workflows = append(f.Workflows, name)
	return core.WorkflowResult{Success: true}, nil
}
