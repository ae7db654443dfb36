// Package crm pushes contacts and workflow triggers to GoHighLevel.
package crm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Jeffail/gabs"
	"github.com/google/uuid"
	"resty.dev/v3"

	"replyflow/internal/config"
	"replyflow/internal/core"
	"replyflow/internal/metrics"
	"replyflow/pkg/restclient"
)

var ErrUnknownWorkflow = errors.New("unknown workflow")

var workflowIDs = map[string]string{
	"lead_nurture":          "workflow_001",
	"lead_nurture_sequence": "workflow_001",
	"testimonial_request":   "workflow_002",
	"support_followup":      "workflow_003",
	"customer_service":      "workflow_004",
	"sales_followup":        "workflow_005",
}

// GHL is a GoHighLevel client. Without an API key every call succeeds with a mock result.
type GHL struct {
	Logger *slog.Logger
	Config *config.Config

	client *resty.Client
}

func (g *GHL) Init(_ context.Context) error {
	g.Logger = g.Logger.With("component", "crm.GHL")

	g.client = restclient.New(&restclient.ClientConfig{
		BaseURL: g.Config.Credentials.GHLBaseURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + g.Config.Credentials.GHLAPIKey,
			"Content-Type":  "application/json",
		},
		ResponseMiddlewares: []resty.ResponseMiddleware{metrics.LatencyMiddleware("ghl")},
	})

	if g.mock() {
		g.Logger.Info("GHL_API_KEY is not set, CRM runs in mock mode")
	}
	return nil
}

func (g *GHL) Shutdown(_ context.Context) error {
	return g.client.Close()
}

func (g *GHL) mock() bool {
	return g.Config.Credentials.GHLAPIKey == ""
}

func (g *GHL) CreateOrUpdateContact(ctx context.Context, contact core.Contact) (core.ContactResult, error) {
	if g.mock() {
		g.Logger.Info("Mock contact upsert", "name", contact.Name, "platform", contact.Platform, "tags", contact.Tags)
		return core.ContactResult{
			Success:   true,
			ContactID: "mock_contact_" + uuid.NewString(),
			IsNew:     true,
			Mock:      true,
		}, nil
	}

	existingID, err := g.findContact(ctx, contact)
	if err != nil {
		g.Logger.Warn("Contact search failed, creating a new one", "error", err)
	}

	payload := g.contactPayload(contact)

	req := g.client.R().WithContext(ctx).SetBody(payload)

	var res *resty.Response
	if existingID != "" {
		res, err = req.Put("/contacts/" + existingID)
	} else {
		res, err = req.Post("/contacts")
	}
	if err != nil {
		return core.ContactResult{Error: err.Error()}, err
	}

	if res.StatusCode() != http.StatusOK && res.StatusCode() != http.StatusCreated {
		err = fmt.Errorf("ghl api error: %d - %s", res.StatusCode(), res.String())
		return core.ContactResult{Error: err.Error()}, err
	}

	contactID := existingID
	if parsed, err := gabs.ParseJSON([]byte(res.String())); err == nil {
		if id, ok := parsed.Path("id").Data().(string); ok && id != "" {
			contactID = id
		} else if id, ok := parsed.Path("contact.id").Data().(string); ok && id != "" {
			contactID = id
		}
	}

	return core.ContactResult{
		Success:   true,
		ContactID: contactID,
		IsNew:     existingID == "",
	}, nil
}

func (g *GHL) findContact(ctx context.Context, contact core.Contact) (string, error) {
	query := contact.PlatformID
	if query == "" {
		query = contact.Name
	}

	res, err := g.client.R().
		WithContext(ctx).
		SetQueryParam("locationId", g.Config.Credentials.GHLLocationID).
		SetQueryParam("query", query).
		Get("/contacts/search")
	if err != nil {
		return "", err
	}
	if res.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("ghl search error: %d", res.StatusCode())
	}

	parsed, err := gabs.ParseJSON([]byte(res.String()))
	if err != nil {
		return "", err
	}

	contacts, _ := parsed.Path("contacts").Children()
	if len(contacts) == 0 {
		return "", nil
	}

	id, _ := contacts[0].Path("id").Data().(string)
	return id, nil
}

func (g *GHL) contactPayload(contact core.Contact) map[string]any {
	firstName, lastName := "Social", "Contact"

	parts := strings.Fields(contact.Name)
	if len(parts) > 0 {
		firstName = parts[0]
	}
	if len(parts) > 1 {
		lastName = strings.Join(parts[1:], " ")
	}

	customFields := contact.CustomFields
	if customFields == nil {
		customFields = map[string]any{}
	}

	return map[string]any{
		"locationId":   g.Config.Credentials.GHLLocationID,
		"firstName":    firstName,
		"lastName":     lastName,
		"tags":         contact.Tags,
		"source":       "Social Media - " + string(contact.Platform),
		"customFields": customFields,
		"attributions": map[string]any{
			"source":   "social_media_ai",
			"medium":   contact.Platform,
			"campaign": "social_engagement",
		},
	}
}

func (g *GHL) TriggerWorkflow(ctx context.Context, name, contactID string, data map[string]any) (core.WorkflowResult, error) {
	if g.mock() {
		g.Logger.Info("Mock workflow trigger", "workflow", name, "contact_id", contactID)
		return core.WorkflowResult{Success: true, Mock: true}, nil
	}

	workflowID, ok := workflowIDs[name]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownWorkflow, name)
		return core.WorkflowResult{Error: err.Error()}, err
	}

	if data == nil {
		data = map[string]any{}
	}

	res, err := g.client.R().
		WithContext(ctx).
		SetBody(map[string]any{
			"workflowId": workflowID,
			"contactId":  contactID,
			"eventData":  data,
		}).
		Post("/workflows/" + workflowID + "/trigger")
	if err != nil {
		return core.WorkflowResult{Error: err.Error()}, err
	}

	if res.StatusCode() != http.StatusOK {
		err = fmt.Errorf("ghl api error: %d - %s", res.StatusCode(), res.String())
		return core.WorkflowResult{Error: err.Error()}, err
	}

	return core.WorkflowResult{Success: true}, nil
}
