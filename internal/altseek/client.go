package altseek

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/costest-cli/pkg/anthropic"
)

const (
	defaultModel         = "claude-sonnet-4-5"
	defaultMaxCandidates = 5
	maxAttempts          = 2
	retryBackoff         = 500 * time.Millisecond
	maxResponseTokens    = 1024
)

const systemPrompt = `You are a highway construction cost estimator. Given a pay
item with little or no bid history, suggest a unit price from a comparable
standard item. Respond with JSON only, no prose:
{"unit_price": <number>, "comparable_item": "<code or name>", "reasoning": "<one sentence>"}
If no defensible comparable exists, respond with {"unit_price": 0}.`

// Options configures an LLMSeeker.
type Options struct {
	Model         string
	MaxCandidates int

	// RequestsPerMinute throttles calls to the API. Zero means 20.
	RequestsPerMinute int
}

// LLMSeeker asks an Anthropic model for a comparable item's unit price.
// Every failure mode degrades to ErrNoAlternate.
type LLMSeeker struct {
	client        anthropic.Client
	model         string
	maxCandidates int
	limiter       *rate.Limiter
}

// NewLLMSeeker wraps client as a rate-limited Seeker.
func NewLLMSeeker(client anthropic.Client, opts Options) *LLMSeeker {
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	maxCandidates := opts.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}
	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}

	return &LLMSeeker{
		client:        client,
		model:         model,
		maxCandidates: maxCandidates,
		limiter:       rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

func (s *LLMSeeker) Seek(ctx context.Context, req Request) (*Alternate, error) {
	log := zap.L().With(zap.String("item_code", req.ItemCode))

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, ctx.Err()
	}

	prompt := s.buildPrompt(req)

	var resp *anthropic.MessageResponse
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err = s.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     s.model,
			MaxTokens: maxResponseTokens,
			System:    systemPrompt,
			Messages: []anthropic.Message{
				{Role: "user", Content: prompt},
			},
		})
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < maxAttempts-1 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if err != nil {
		log.Warn("alternate seek call failed", zap.Error(err))
		return nil, ErrNoAlternate
	}

	alt, ok := parseAlternate(resp.Text())
	if !ok {
		log.Debug("alternate seek returned no usable price")
		return nil, ErrNoAlternate
	}

	log.Info("alternate price found",
		zap.Float64("unit_price", alt.UnitPrice),
		zap.String("provenance", alt.Provenance))
	return alt, nil
}

func (s *LLMSeeker) buildPrompt(req Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pay item %s: %s\n", req.ItemCode, req.Description)
	if req.Geometry != nil {
		fmt.Fprintf(&sb, "Parsed geometry: %s, %.1f sq ft (from %q)\n",
			req.Geometry.Shape, req.Geometry.AreaSqFt, req.Geometry.SourceText)
	}
	maxCandidates := req.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = s.maxCandidates
	}
	fmt.Fprintf(&sb, "Consider at most %d comparable standard items.", maxCandidates)
	return sb.String()
}

// parseAlternate extracts a substitute price from the model's reply. A
// missing, zero, or negative price means the model declined.
func parseAlternate(text string) (*Alternate, bool) {
	var raw struct {
		UnitPrice      float64 `json:"unit_price"`
		ComparableItem string  `json:"comparable_item"`
		Reasoning      string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return nil, false
	}
	if raw.UnitPrice <= 0 {
		return nil, false
	}

	provenance := raw.ComparableItem
	if raw.Reasoning != "" {
		if provenance != "" {
			provenance += ": "
		}
		provenance += raw.Reasoning
	}

	return &Alternate{UnitPrice: raw.UnitPrice, Provenance: provenance}, true
}

// cleanJSON strips markdown fences and surrounding prose from a reply.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
