package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/audit"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/llm"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/logging"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/metrics"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

const sqlPromptTemplate = `Given the following database schema:
%s

Generate an SQL query based on this instruction:
%s

Return the SQL query inside ` + "```sql ... ```" + ` markers.`

// BuildSQLPrompt fills the fixed NL-to-SQL prompt.
func BuildSQLPrompt(schemaText, instruction string) string {
	return fmt.Sprintf(sqlPromptTemplate, schemaText, instruction)
}

// GeneratedRun is the outcome of generating and executing a query.
// Found is false when the model reply had no ```sql block; SQL then holds the
// reply unchanged.
type GeneratedRun struct {
	RawText   string
	SQL       string
	Found     bool
	Execution Execution
}

// SQLGenService turns natural-language instructions into SQL.
type SQLGenService interface {
	// Generate sends one prompt and returns the model's raw reply.
	// An empty apiKey fails with apperrors.ErrMissingAPIKey before any call.
	Generate(ctx context.Context, apiKey, schemaText, instruction string) (string, error)

	// RunGenerated generates, extracts, stages and executes a query.
	// Generation errors are returned; execution errors are reported in
	// GeneratedRun.Execution.
	RunGenerated(ctx context.Context, params models.ConnectionParams, apiKey, schemaText, instruction string) (GeneratedRun, error)
}

type sqlGenService struct {
	clients     llm.LLMClientFactory
	queries     QueryService
	provider    string
	temperature float64
	metrics     *metrics.Collector
	logger      *zap.Logger
}

// NewSQLGenService creates a generator. provider labels metrics only.
func NewSQLGenService(
	clients llm.LLMClientFactory,
	queries QueryService,
	provider string,
	temperature float64,
	collector *metrics.Collector,
	logger *zap.Logger,
) SQLGenService {
	return &sqlGenService{
		clients:     clients,
		queries:     queries,
		provider:    provider,
		temperature: temperature,
		metrics:     collector,
		logger:      logger.Named("sqlgen"),
	}
}

var _ SQLGenService = (*sqlGenService)(nil)

func (s *sqlGenService) Generate(ctx context.Context, apiKey, schemaText, instruction string) (string, error) {
	if apiKey == "" {
		return "", apperrors.ErrMissingAPIKey
	}

	client, err := s.clients.Create(apiKey)
	if err != nil {
		return "", fmt.Errorf("create llm client: %w", err)
	}

	result, err := client.GenerateResponse(ctx, BuildSQLPrompt(schemaText, instruction), "", s.temperature)
	if err != nil {
		s.metrics.ObserveGeneration(s.provider, metrics.OutcomeError, 0, 0)
		s.logger.Error("SQL generation failed",
			zap.String("model", client.GetModel()),
			zap.String("error", logging.SanitizeError(err)))
		return "", fmt.Errorf("generate sql: %w", err)
	}

	s.metrics.ObserveGeneration(s.provider, metrics.OutcomeSuccess, result.PromptTokens, result.CompletionTokens)
	s.logger.Info("SQL generated",
		zap.String("model", client.GetModel()),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens))
	return result.Content, nil
}

func (s *sqlGenService) RunGenerated(ctx context.Context, params models.ConnectionParams, apiKey, schemaText, instruction string) (GeneratedRun, error) {
	raw, err := s.Generate(ctx, apiKey, schemaText, instruction)
	if err != nil {
		return GeneratedRun{}, err
	}

	run := GeneratedRun{RawText: raw}
	run.SQL, run.Found = llm.ExtractSQL(raw)
	if !run.Found {
		s.logger.Warn("Model reply has no sql block; executing it unchanged",
			zap.String("reply", logging.SanitizeQuery(raw)))
	}

	run.Execution = s.queries.Run(ctx, params, run.SQL, audit.SourceGenerated)
	return run, nil
}
