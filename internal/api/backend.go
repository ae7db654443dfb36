package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"replyflow/internal/core"
	"replyflow/internal/notify"
	"replyflow/internal/scheduling"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	defaultDays      = 30
)

var listableStatuses = []core.ReplyStatus{
	core.ReplyStatusPending,
	core.ReplyStatusApproved,
	core.ReplyStatusRejected,
	core.ReplyStatusAutoApproved,
	core.ReplyStatusPosted,
}

type Backend struct {
	Logger *slog.Logger

	Replies   core.ReplyRepository
	Settings  core.SettingsRepository
	Analytics core.AnalyticsRepository
	Poster    core.ReplyPoster
	Events    *notify.Broadcaster
}

func (b *Backend) Init(context.Context) error {
	b.Logger = b.Logger.With("component", "api.Backend")
	return nil
}

type ownerBody struct {
	Active *bool `json:"active"`
}

type replyView struct {
	ID         uint             `json:"id"`
	CommentID  uint             `json:"comment_id"`
	Content    string           `json:"content"`
	Status     core.ReplyStatus `json:"status"`
	Origin     core.ReplyOrigin `json:"reply_type"`
	Confidence float64          `json:"confidence"`
	Triggers   core.Triggers    `json:"crm_triggers"`
	ExternalID *string          `json:"platform_reply_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	ApprovedAt *time.Time       `json:"approved_at,omitempty"`
	ApprovedBy string           `json:"approved_by,omitempty"`
	PostedAt   *time.Time       `json:"posted_at,omitempty"`
}

func newReplyView(reply core.Reply) replyView {
	return replyView{
		ID:         reply.ID,
		CommentID:  reply.CommentID,
		Content:    reply.Content,
		Status:     reply.Status,
		Origin:     reply.Origin,
		Confidence: reply.Confidence,
		Triggers:   reply.Triggers.Data(),
		ExternalID: reply.ExternalID,
		CreatedAt:  reply.CreatedAt,
		ApprovedAt: reply.ApprovedAt,
		ApprovedBy: reply.ApprovedBy,
		PostedAt:   reply.PostedAt,
	}
}

type approveResult struct {
	ID       uint       `json:"id"`
	Approved bool       `json:"approved"`
	Posted   bool       `json:"posted"`
	Reply    *replyView `json:"reply,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func (b *Backend) Health(w http.ResponseWriter, r *http.Request) {
	_, err := b.Settings.OwnerActive(r.Context())
	if err != nil {
		requestLogger(r.Context()).Error("Health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage is unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (b *Backend) GetOwner(w http.ResponseWriter, r *http.Request) {
	active, err := b.Settings.OwnerActive(r.Context())
	if err != nil {
		b.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": active})
}

func (b *Backend) PutOwner(w http.ResponseWriter, r *http.Request) {
	var body ownerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Active == nil {
		writeError(w, http.StatusBadRequest, `body must be {"active": bool}`)
		return
	}

	err := b.Settings.SetOwnerActive(r.Context(), *body.Active)
	if err != nil {
		b.internalError(w, r, err)
		return
	}

	requestLogger(r.Context()).Info("Owner status changed", "active", *body.Active)
	writeJSON(w, http.StatusOK, map[string]bool{"active": *body.Active})
}

func (b *Backend) ListReplies(w http.ResponseWriter, r *http.Request) {
	status := core.ReplyStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = core.ReplyStatusPending
	}
	if !slices.Contains(listableStatuses, status) {
		writeError(w, http.StatusBadRequest, "unknown status "+string(status))
		return
	}

	limit, err := intParam(r, "limit", defaultListLimit)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	limit = min(limit, maxListLimit)

	replies, err := b.Replies.ListByStatus(r.Context(), limit, status)
	if err != nil {
		b.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(replies, func(reply core.Reply, _ int) replyView {
		return newReplyView(reply)
	}))
}

// Approve approves a pending reply and posts it right away.
func (b *Backend) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reply id")
		return
	}

	result, err := b.approve(r.Context(), uint(id), core.ApprovedByManual)
	if err != nil {
		b.writeTransitionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (b *Backend) BulkApprove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []uint `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, `body must be {"ids": [int]}`)
		return
	}

	results := make([]approveResult, 0, len(body.IDs))
	for _, id := range lo.Uniq(body.IDs) {
		result, err := b.approve(r.Context(), id, core.ApprovedByBulk)
		if err != nil {
			result = approveResult{ID: id, Error: err.Error()}
		}
		results = append(results, result)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"approved": lo.CountBy(results, func(result approveResult) bool { return result.Approved }),
		"results":  results,
	})
}

func (b *Backend) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reply id")
		return
	}

	reply, err := b.Replies.Reject(r.Context(), uint(id))
	if err != nil {
		b.writeTransitionError(w, r, err)
		return
	}

	b.record(r.Context(), core.MetricReplyRejected, reply)
	writeJSON(w, http.StatusOK, newReplyView(*reply))
}

func (b *Backend) Summary(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", defaultDays)
	if err != nil || days <= 0 {
		writeError(w, http.StatusBadRequest, "days must be a positive integer")
		return
	}

	to := time.Now()
	summary, err := b.Analytics.Summary(r.Context(), to.AddDate(0, 0, -days), to)
	if err != nil {
		b.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (b *Backend) approve(ctx context.Context, id uint, approvedBy string) (approveResult, error) {
	reply, err := b.Replies.Approve(ctx, id, approvedBy)
	if err != nil {
		return approveResult{}, err
	}
	b.record(ctx, core.MetricReplyApproved, reply)

	result := approveResult{ID: id, Approved: true}

	posted, err := b.Poster.Post(ctx, reply)
	switch {
	case errors.Is(err, scheduling.ErrClaimed):
		result.Error = "reply is already being posted"
	case err != nil:
		b.Logger.Error("Failed to post approved reply", "reply_id", id, "error", err)
		result.Error = err.Error()
	case !posted.Success:
		result.Error = posted.Error
	default:
		result.Posted = true
	}

	current, err := b.Replies.Get(ctx, id)
	if err == nil {
		view := newReplyView(*current)
		result.Reply = &view
	}

	return result, nil
}

func (b *Backend) record(ctx context.Context, metricType string, reply *core.Reply) {
	err := b.Analytics.Record(ctx, "", metricType, 1, map[string]any{
		"reply_id":   reply.ID,
		"comment_id": reply.CommentID,
	})
	if err != nil {
		b.Logger.Warn("Failed to record analytics", "metric", metricType, "error", err)
	}
}

func (b *Backend) writeTransitionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "reply not found")
	case errors.Is(err, core.ErrInvalidStatus):
		writeError(w, http.StatusConflict, err.Error())
	default:
		b.internalError(w, r, err)
	}
}

func (b *Backend) internalError(w http.ResponseWriter, r *http.Request, err error) {
	requestLogger(r.Context()).Error("Request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
