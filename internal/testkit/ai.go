// Package testkit provides in-process fakes of the external collaborators for tests.
package testkit

import (
	"context"
	"sync"

	"replyflow/internal/ai"
	"replyflow/internal/core"
)

// AI mirrors the real engine's keyword short-circuit and answers everything else from
// its fields.
type AI struct {
	mu sync.Mutex

	Classification core.Classification
	ClassifyErr    error

	ReplyText   string
	GenerateErr error

	Sentiment    core.SentimentAnalysis
	SentimentErr error

	ModelCalls int
}

func NewAI() *AI {
	return &AI{
		Classification: core.Classification{Category: core.CategoryGeneral, Confidence: 0.9, Method: ai.MethodAI},
		ReplyText:      "Thanks for watching!",
		Sentiment:      core.SentimentAnalysis{Sentiment: "positive", Score: 0.9, Emotions: []string{"joy"}},
	}
}

func (f *AI) Classify(_ context.Context, text string, _ core.Platform) (core.Classification, error) {
	if classification, ok := ai.ClassifyByKeywords(text); ok {
		return classification, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.ModelCalls++
	return f.Classification, f.ClassifyErr
}

func (f *AI) GenerateReply(_ context.Context, req core.ReplyRequest) (core.GeneratedReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ModelCalls++
	if f.GenerateErr != nil {
		return core.GeneratedReply{}, f.GenerateErr
	}

	return core.GeneratedReply{
		Text:       f.ReplyText,
		Confidence: ai.ReplyConfidence(req.Category, f.ReplyText),
		Triggers:   ai.DetectTriggers(req.Text, f.ReplyText, req.Category),
		Model:      "fake",
	}, nil
}

func (f *AI) AnalyzeSentiment(_ context.Context, _ string) (core.SentimentAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.Sentiment, f.SentimentErr
}

func (f *AI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.ModelCalls
}
