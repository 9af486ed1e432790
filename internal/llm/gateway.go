package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Flow names label Gateway calls in logs and metrics.
const (
	FlowGuidance = "guidance"
	FlowChat     = "chat"
	FlowExam     = "exam"
	FlowFeedback = "exam_feedback"
	FlowReport   = "report"
)

// Format is the response format requested from the model.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Options configures a single Gateway call.
type Options struct {
	Flow        string
	Format      Format
	Temperature float32
}

// Gateway is a text-in/text-out generative model.
type Gateway interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, prompt string, opts Options) (string, error)

// Generate calls f.
func (f GatewayFunc) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}

func isInvalidKey(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403) {
		return true
	}
	return strings.Contains(err.Error(), "API key not valid")
}
