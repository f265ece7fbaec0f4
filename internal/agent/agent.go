// Package agent answers free-text queries with a ReAct loop that may call
// the article search tool any number of times before answering.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

const (
	defaultMaxIterations = 5
	inputKey             = "input"
	// outputKey is the executor's default return key.
	outputKey = "output"
)

var (
	ErrModelRequired = errors.New("language model is required")
	ErrToolRequired  = errors.New("search tool is required")
	ErrEmptyQuery    = errors.New("query is empty")
	ErrNoOutput      = errors.New("agent returned no output")
)

// Agent is a one-shot tool-calling agent over a single search tool.
type Agent struct {
	executor    *agents.Executor
	temperature float64
	logger      *slog.Logger
}

// Option configures an Agent.
type Option func(*settings)

type settings struct {
	maxIterations int
	temperature   float64
}

// WithMaxIterations bounds how many tool calls one query may make.
func WithMaxIterations(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithTemperature sets the sampling temperature passed to the model.
func WithTemperature(t float64) Option {
	return func(s *settings) {
		s.temperature = t
	}
}

func New(model llms.Model, searchTool tools.Tool, opts ...Option) (*Agent, error) {
	if model == nil {
		return nil, ErrModelRequired
	}
	if searchTool == nil {
		return nil, ErrToolRequired
	}

	cfg := settings{maxIterations: defaultMaxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}

	oneShot := agents.NewOneShotAgent(
		model,
		[]tools.Tool{searchTool},
		agents.WithMaxIterations(cfg.maxIterations),
	)

	return &Agent{
		executor:    agents.NewExecutor(oneShot, agents.WithMaxIterations(cfg.maxIterations)),
		temperature: cfg.temperature,
		logger:      slog.Default().With("component", "agent"),
	}, nil
}

// Ask runs the agent on query and returns its final answer.
func (a *Agent) Ask(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	a.logger.Debug("agent invoked", "query", query)
	result, err := chains.Call(ctx, a.executor, map[string]any{inputKey: query}, chains.WithTemperature(a.temperature))
	if err != nil {
		a.logger.Error("agent run failed", "query", query, "err", err)
		return "", fmt.Errorf("agent run failed: %w", err)
	}

	output, ok := result[outputKey].(string)
	if !ok {
		return "", ErrNoOutput
	}
	return strings.TrimSpace(output), nil
}
