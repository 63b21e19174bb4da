// Package advisor formats plant-care requests and forwards them to the
// hosted Gemini model. It exposes three operations (species identification,
// health analysis, goal advice), each with its own fixed sampling
// configuration. The package performs no retries; retry policy belongs to
// the caller.
package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UnknownSpecies is the sentinel the model is instructed to return when it
// cannot identify the plant with confidence.
const UnknownSpecies = "I don't know this plant"

// DefaultTimeout bounds a single model call when the caller's context has no
// deadline of its own.
const DefaultTimeout = 2 * time.Minute

// SamplingConfig is the fixed generation configuration for one operation.
type SamplingConfig struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// Identification wants the same name for the same plant every time; the
// descriptive operations trade determinism for richer prose.
var (
	identifySampling = SamplingConfig{Temperature: 0.2, TopP: 0.9, TopK: 32, MaxOutputTokens: 256}
	analyzeSampling  = SamplingConfig{Temperature: 0.7, TopP: 0.95, TopK: 64, MaxOutputTokens: 2048}
	adviseSampling   = SamplingConfig{Temperature: 0.7, TopP: 0.95, TopK: 64, MaxOutputTokens: 2048}
)

// Request is one fully formatted model call.
type Request struct {
	Instruction string
	Images      []Image
	Sampling    SamplingConfig
}

// Generator executes a formatted request against the model backend.
// The production implementation lives in gemini.go; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ServiceError wraps any transport or model failure so callers can treat all
// backend trouble uniformly.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Client builds the three plant-care prompts and runs them through a
// Generator.
type Client struct {
	gen    Generator
	logger *zap.Logger
}

// NewClient creates a Client. A nil logger disables logging.
func NewClient(gen Generator, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{gen: gen, logger: logger}
}

// Identify asks for the plant's common species name. The response is trimmed
// since the prompt demands a bare name on a single line.
func (c *Client) Identify(ctx context.Context, images []Image) (string, error) {
	instruction := fmt.Sprintf(
		"Look at the attached photo(s) of a plant. "+
			"Reply with only the single most common name of the species, on one line, with no extra commentary. "+
			"If you cannot identify the plant with reasonable confidence, reply exactly: %s",
		UnknownSpecies)

	text, err := c.call(ctx, "identify", Request{
		Instruction: instruction,
		Images:      images,
		Sampling:    identifySampling,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// AnalyzeHealth asks for a structured three-section health report for the
// named species.
func (c *Client) AnalyzeHealth(ctx context.Context, images []Image, name string) (string, error) {
	instruction := fmt.Sprintf(
		"The attached photo(s) show a plant the user identified as %q. "+
			"Assess its condition from the photos and write a markdown report with exactly three sections:\n"+
			"## Health Status\nhow the plant is doing right now\n"+
			"## Improvement Actions\nbulleted, concrete steps to address any problems you see\n"+
			"## General Care\nhow to keep a %s thriving (light, water, soil, feeding)\n"+
			"Use ## headings, * bullets and **bold** for emphasis; no other markdown.",
		name, name)

	return c.call(ctx, "analyze", Request{
		Instruction: instruction,
		Images:      images,
		Sampling:    analyzeSampling,
	})
}

// GoalAdvice asks for care advice tailored to the user's goal, incremental
// to an earlier health report.
func (c *Client) GoalAdvice(ctx context.Context, name, priorReport, goal string) (string, error) {
	instruction := fmt.Sprintf(
		"The user has a %s and wants the following: %s\n\n"+
			"They already received this report about the plant:\n\n%s\n\n"+
			"Give advice specifically aimed at their goal. Build on the report above but do not repeat its content; "+
			"only add what is new and relevant to the goal. "+
			"Use ## headings, * bullets and **bold** for emphasis; no other markdown.",
		name, goal, priorReport)

	return c.call(ctx, "advise", Request{
		Instruction: instruction,
		Sampling:    adviseSampling,
	})
}

func (c *Client) call(ctx context.Context, op string, req Request) (string, error) {
	// Centralized timeout: only when the caller did not set a deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	start := time.Now()
	c.logger.Debug("model call started",
		zap.String("op", op),
		zap.Int("images", len(req.Images)),
		zap.Int("instruction_len", len(req.Instruction)))

	text, err := c.gen.Generate(ctx, req)
	if err != nil {
		c.logger.Error("model call failed",
			zap.String("op", op),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", &ServiceError{Op: op, Err: err}
	}

	c.logger.Debug("model call finished",
		zap.String("op", op),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))
	return text, nil
}
