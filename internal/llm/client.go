package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pavelanni/pathfinder/internal/llm/prompts"
	"github.com/pavelanni/pathfinder/internal/model"
	"github.com/pavelanni/pathfinder/internal/normalize"
)

// Temperatures per flow.
const (
	guidanceTemperature = 0.6
	chatTemperature     = 0.4
	examTemperature     = 0.4
	feedbackTemperature = 0.6
	reportTemperature   = 0.7
)

// Client builds prompts, calls the Gateway and normalizes its replies.
type Client struct {
	gw Gateway
}

// New creates a client. A nil gateway means no API key is configured:
// every call then fails with ErrNotConfigured without touching the network.
func New(gw Gateway) *Client {
	return &Client{gw: gw}
}

// Configured reports whether the client has a gateway to call.
func (c *Client) Configured() bool {
	return c.gw != nil
}

// GenerateGuidance turns the user's profile and goals into a guidance package.
func (c *Client) GenerateGuidance(ctx context.Context, query string) (*model.GuidancePackage, error) {
	text, err := c.call(ctx, Options{Flow: FlowGuidance, Format: FormatJSON, Temperature: guidanceTemperature},
		func() (string, error) { return prompts.BuildGuidancePrompt(query) })
	if err != nil {
		return nil, err
	}
	return normalize.Guidance(text)
}

// AnswerChat answers a free-form question about the current dashboard.
func (c *Client) AnswerChat(ctx context.Context, profile string, pkg model.GuidancePackage, question string) (string, error) {
	text, err := c.call(ctx, Options{Flow: FlowChat, Format: FormatText, Temperature: chatTemperature},
		func() (string, error) { return prompts.BuildChatPrompt(profile, pkg, question) })
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateExam asks for a diagnostic exam over the learning path.
func (c *Client) GenerateExam(ctx context.Context, path model.LearningPath) ([]model.ExamQuestion, error) {
	text, err := c.call(ctx, Options{Flow: FlowExam, Format: FormatJSON, Temperature: examTemperature},
		func() (string, error) { return prompts.BuildExamPrompt(path) })
	if err != nil {
		return nil, err
	}
	return normalize.ExamQuestions(text)
}

// GenerateExamFeedback asks the model to aggregate locally scored answers into exam results.
func (c *Client) GenerateExamFeedback(ctx context.Context, path model.LearningPath, answers []model.UserExamAnswer) (*model.ExamResults, error) {
	text, err := c.call(ctx, Options{Flow: FlowFeedback, Format: FormatJSON, Temperature: feedbackTemperature},
		func() (string, error) { return prompts.BuildFeedbackPrompt(path, answers) })
	if err != nil {
		return nil, err
	}
	return normalize.ExamResults(text)
}

// GenerateReport asks for the personalized part of the progress report.
func (c *Client) GenerateReport(ctx context.Context, rc model.ReportContext) (*model.ProgressReportData, error) {
	text, err := c.call(ctx, Options{Flow: FlowReport, Format: FormatJSON, Temperature: reportTemperature},
		func() (string, error) { return prompts.BuildReportPrompt(rc) })
	if err != nil {
		return nil, err
	}
	return normalize.Report(text)
}

func (c *Client) call(ctx context.Context, opts Options, build func() (string, error)) (string, error) {
	if c.gw == nil {
		return "", ErrNotConfigured
	}
	prompt, err := build()
	if err != nil {
		return "", fmt.Errorf("build %s prompt: %w", opts.Flow, err)
	}

	start := time.Now()
	text, err := c.gw.Generate(ctx, prompt, opts)
	logger := slog.With("flow", opts.Flow, "flow_id", model.FlowIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return "", err
		}
		gwErr := &GatewayError{Flow: opts.Flow, InvalidKey: isInvalidKey(err), Err: err}
		logger.Error("gateway call failed", "invalid_key", gwErr.InvalidKey, "error", err)
		return "", gwErr
	}
	logger.Debug("gateway call done", "duration", time.Since(start), "prompt_len", len(prompt), "response_len", len(text))
	return text, nil
}
