package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

const (
	chatTimeout = 30 * time.Second
	// maxAttempts bounds retries of retryable failures (rate limits, 5xx).
	maxAttempts = 2
)

// Config carries the chat-completion knobs fixed at startup.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int64
}

// Client issues chat completions against one configured model.
type Client struct {
	client openai.Client
	cfg    Config
	logger *slog.Logger
}

// NewClient creates a chat client. The same underlying OpenAI client is
// shared with the embedder.
func NewClient(client openai.Client, cfg Config, logger *slog.Logger) *Client {
	return &Client{client: client, cfg: cfg, logger: logger}
}

// AnalyzeJournal evaluates one journal day.
func (c *Client) AnalyzeJournal(ctx context.Context, entry metrics.LogEntry, profile metrics.UserProfile) (Analysis, error) {
	system := fmt.Sprintf(analysisSystemPrompt, vocabularyList())
	user := formatProfile(profile) + formatJournal([]metrics.LogEntry{entry})
	raw, err := c.complete(ctx, system, user)
	if err != nil {
		return Analysis{}, errors.Wrap(err, "analyze journal")
	}
	var payload analysisPayload
	if err = parseObject(raw, &payload); err != nil {
		return Analysis{}, errors.Wrap(err, "parse analysis response")
	}
	return payload.normalize(), nil
}

// RecommendRoutine sketches a routine of the requested length. The per-day
// exercise names the model suggests are discarded; only catalog retrieval
// populates exercises.
func (c *Client) RecommendRoutine(ctx context.Context, logs []metrics.LogEntry, days, frequency int, profile metrics.UserProfile) (Draft, error) {
	system := fmt.Sprintf(routineSystemPrompt, vocabularyList())
	var b strings.Builder
	b.WriteString(formatProfile(profile))
	fmt.Fprintf(&b, "Plan %d training days over the coming period, training %d days per week.\n", days, frequency)
	b.WriteString("Journal:\n")
	b.WriteString(formatJournal(logs))
	raw, err := c.complete(ctx, system, b.String())
	if err != nil {
		return Draft{}, errors.Wrap(err, "recommend routine")
	}
	var payload draftPayload
	if err = parseObject(raw, &payload); err != nil {
		return Draft{}, errors.Wrap(err, "parse routine response")
	}
	return payload.normalize(), nil
}

// SketchWeeklyPattern analyzes a week of logs and sketches next week's plan
// with empty exercise lists.
func (c *Client) SketchWeeklyPattern(ctx context.Context, logs []metrics.LogEntry, weekly metrics.WeeklyMetrics, profile metrics.UserProfile) (Draft, error) {
	system := fmt.Sprintf(weeklyPatternSystemPrompt, vocabularyList())
	var b strings.Builder
	b.WriteString(formatProfile(profile))
	b.WriteString(formatMetrics(weekly))
	b.WriteString("Journal:\n")
	b.WriteString(formatJournal(logs))
	raw, err := c.complete(ctx, system, b.String())
	if err != nil {
		return Draft{}, errors.Wrap(err, "sketch weekly pattern")
	}
	var payload draftPayload
	if err = parseObject(raw, &payload); err != nil {
		return Draft{}, errors.Wrap(err, "parse weekly pattern response")
	}
	return payload.normalize(), nil
}

// complete issues one chat completion with a strict-JSON response format,
// retrying retryable failures with backoff.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(c.cfg.Temperature),
		MaxTokens:   openai.Int(c.cfg.MaxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Second << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", classifyChatError(ctx.Err())
			case <-time.After(backoff):
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, chatTimeout)
		completion, err := c.client.Chat.Completions.New(callCtx, params)
		cancel()
		if err != nil {
			lastErr = classifyChatError(err)
			if ctx.Err() != nil || !retryable(err) {
				return "", lastErr
			}
			c.logger.LogAttrs(ctx, slog.LevelWarn, "chat completion failed, retrying",
				slog.Int("attempt", attempt+1), errors.SlogError(lastErr))
			continue
		}
		if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
			return "", errors.WithKind(errors.New("chat completion returned no content"),
				errors.KindResponseMalformed)
		}
		c.logger.LogAttrs(ctx, slog.LevelDebug, "chat completion",
			slog.String("model", c.cfg.Model),
			slog.Int64("prompt_tokens", completion.Usage.PromptTokens),
			slog.Int64("completion_tokens", completion.Usage.CompletionTokens),
			slog.String("finish_reason", string(completion.Choices[0].FinishReason)))
		return completion.Choices[0].Message.Content, nil
	}
	return "", lastErr
}

// classifyChatError tags transport failures with the error kind the edge
// maps to status and exit codes. Cancellation before any usable result is its
// own kind so the caller can distinguish "the user hung up" from "the service
// is down".
func classifyChatError(err error) error {
	if errors.Is(err, context.Canceled) {
		return errors.WithKind(errors.Wrap(err, "chat completion canceled"), errors.KindRequestCanceled)
	}
	return errors.WithKind(errors.Wrap(err, "chat completion"), errors.KindChatUnavailable)
}

// retryable reports whether a second attempt could plausibly succeed. The
// OpenAI client does not expose typed errors for every failure, so this
// matches on the message like the status page does.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "too many requests", "timeout", "server error", "internal", "502", "503", "504", "overloaded"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
