package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"resty.dev/v3"

	"replyflow/internal/approval"
	"replyflow/internal/config"
	"replyflow/internal/core"
	"replyflow/internal/metrics"
	"replyflow/pkg/restclient"
)

const (
	MethodKeyword  = "keyword"
	MethodAI       = "ai"
	MethodFallback = "fallback"

	defaultAuthor = "Friend"

	classificationTemperature = 0.3
	classificationMaxTokens   = 150
	sentimentMaxTokens        = 100
)

// Engine classifies comments and writes replies with an OpenAI compatible chat completions API.
type Engine struct {
	Logger *slog.Logger
	Config *config.Config

	client *resty.Client
}

func (e *Engine) Init(_ context.Context) error {
	e.Logger = e.Logger.With("component", "ai.Engine")

	e.client = restclient.New(&restclient.ClientConfig{
		BaseURL: e.Config.Credentials.OpenAIBaseURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + e.Config.Credentials.OpenAIAPIKey,
			"Content-Type":  "application/json",
		},
		ResponseMiddlewares: []resty.ResponseMiddleware{metrics.LatencyMiddleware("openai")},
	})

	if !e.IsConfigured() {
		e.Logger.Warn("OPENAI_API_KEY is not set, only keyword classification and fallback replies are available")
	}
	return nil
}

func (e *Engine) Shutdown(_ context.Context) error {
	return e.client.Close()
}

func (e *Engine) IsConfigured() bool {
	return e.Config.Credentials.OpenAIAPIKey != ""
}

// Classify tries the keyword tables first and asks the model only when nothing matches.
func (e *Engine) Classify(ctx context.Context, text string, platform core.Platform) (core.Classification, error) {
	if classification, ok := ClassifyByKeywords(text); ok {
		return classification, nil
	}

	prompt := fmt.Sprintf(`Analyze this social media comment and classify it into ONE of these categories:
- lead: Shows buying interest, asks about services/products, wants more info
- praise: Compliments, positive feedback, appreciation
- question: Asks genuine questions about content/topic
- complaint: Negative feedback, problems, dissatisfaction
- spam: Promotional, irrelevant, suspicious content
- general: Normal engagement, casual comments

Comment: %q
Platform: %s

Respond with JSON only: {"type": "category", "confidence": 0.0-1.0, "reasoning": "brief explanation"}`, text, platform)

	content, err := e.complete(ctx, classificationTemperature, classificationMaxTokens,
		message{Role: "system", Content: "You are a social media comment classifier. Respond only with valid JSON."},
		message{Role: "user", Content: prompt},
	)
	if err != nil {
		return core.Classification{}, err
	}

	parsed, err := parseJSONContent(content)
	if err != nil {
		return core.Classification{}, err
	}

	category, _ := parsed.Path("type").Data().(string)
	confidence, ok := parsed.Path("confidence").Data().(float64)
	if !core.Category(category).Valid() || !ok {
		return core.Classification{}, fmt.Errorf("%w: %s", ErrMalformedResponse, content)
	}
	reasoning, _ := parsed.Path("reasoning").Data().(string)

	return core.Classification{
		Category:   core.Category(category),
		Confidence: min(max(confidence, 0), 1),
		Method:     MethodAI,
		Reasoning:  reasoning,
	}, nil
}

func (e *Engine) GenerateReply(ctx context.Context, req core.ReplyRequest) (core.GeneratedReply, error) {
	author := req.Author
	if author == "" {
		author = defaultAuthor
	}

	var postContext string
	if req.PostContext != "" {
		postContext = "\nPost context: " + req.PostContext
	}

	prompt := fmt.Sprintf(`Platform: %s
Comment type: %s
Commenter: %s
Comment: %q%s

Generate an appropriate reply following the guidelines.`, req.Platform, req.Category, author, req.Text, postContext)

	text, err := e.complete(ctx, e.Config.AITemperature, e.Config.MaxReplyTokens,
		message{Role: "system", Content: DefaultBrandVoice.systemPrompt()},
		message{Role: "user", Content: prompt},
	)
	if err != nil {
		return core.GeneratedReply{}, err
	}

	confidence := ReplyConfidence(req.Category, text)

	return core.GeneratedReply{
		Text:          text,
		Confidence:    confidence,
		Triggers:      DetectTriggers(req.Text, text, req.Category),
		NeedsApproval: approval.Decide(req.Category, confidence, e.Config.AutoApproveThreshold) != core.ReplyStatusAutoApproved,
		Model:         e.Config.OpenAIModel,
	}, nil
}

func (e *Engine) AnalyzeSentiment(ctx context.Context, text string) (core.SentimentAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze the sentiment of this text. Respond with JSON only:

Text: %q

Format: {"sentiment": "positive/negative/neutral", "score": 0.0-1.0, "emotions": ["list", "of", "emotions"]}`, text)

	content, err := e.complete(ctx, classificationTemperature, sentimentMaxTokens,
		message{Role: "user", Content: prompt},
	)
	if err != nil {
		return core.SentimentAnalysis{}, err
	}

	parsed, err := parseJSONContent(content)
	if err != nil {
		return core.SentimentAnalysis{}, err
	}

	sentiment, _ := parsed.Path("sentiment").Data().(string)
	if sentiment == "" {
		return core.SentimentAnalysis{}, fmt.Errorf("%w: %s", ErrMalformedResponse, content)
	}
	score, _ := parsed.Path("score").Data().(float64)

	var emotions []string
	children, _ := parsed.Path("emotions").Children()
	for _, child := range children {
		if emotion, ok := child.Data().(string); ok {
			emotions = append(emotions, emotion)
		}
	}

	return core.SentimentAnalysis{
		Sentiment: strings.ToLower(sentiment),
		Score:     score,
		Emotions:  emotions,
	}, nil
}
