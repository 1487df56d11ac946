package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/audit"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/logging"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/metrics"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/staging"
)

// Execution is the outcome of running one staged statement.
// Exactly one of Table and Message is meaningful: Table is nil on failure and
// Message then holds the user-visible error.
type Execution struct {
	Table   *models.ResultTable
	Message string
}

// OK reports whether the statement produced a result.
func (e Execution) OK() bool {
	return e.Table != nil
}

// QueryService executes SQL through the staging area.
type QueryService interface {
	// Execute runs the single statement stored at path. Driver errors are
	// logged and reported in Execution.Message, never returned.
	Execute(ctx context.Context, params models.ConnectionParams, path, source string) Execution

	// Run stages sqlText to the request file and executes it.
	Run(ctx context.Context, params models.ConnectionParams, sqlText, source string) Execution
}

type queryService struct {
	executors datasource.ExecutorFactory
	area      *staging.Area
	auditor   *audit.SecurityAuditor
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// NewQueryService creates a query service. auditor and collector may be nil.
func NewQueryService(
	executors datasource.ExecutorFactory,
	area *staging.Area,
	auditor *audit.SecurityAuditor,
	collector *metrics.Collector,
	logger *zap.Logger,
) QueryService {
	return &queryService{
		executors: executors,
		area:      area,
		auditor:   auditor,
		metrics:   collector,
		logger:    logger.Named("query"),
	}
}

var _ QueryService = (*queryService)(nil)

func (s *queryService) Run(ctx context.Context, params models.ConnectionParams, sqlText, source string) Execution {
	path, err := s.area.Stage(sqlText)
	if err != nil {
		return s.fail(params, source, "stage", err, time.Now())
	}
	return s.Execute(ctx, params, path, source)
}

func (s *queryService) Execute(ctx context.Context, params models.ConnectionParams, path, source string) Execution {
	start := time.Now()
	driver := driverLabel(params)

	sqlText, err := staging.Read(path)
	if err != nil {
		return s.fail(params, source, "read", err, start)
	}

	executor, err := s.executors.NewExecutor(params)
	if err != nil {
		return s.fail(params, source, "connect", err, start)
	}

	s.auditor.AuditStatement(ctx, source, driver, sqlText)

	table, err := executor.Run(ctx, sqlText)
	if err != nil {
		return s.fail(params, source, "execute", err, start)
	}
	if table == nil {
		table = &models.ResultTable{}
	}

	s.metrics.ObserveQuery(driver, source, metrics.OutcomeSuccess, time.Since(start))
	s.logger.Info("Statement executed",
		zap.String("connection", params.String()),
		zap.String("source", source),
		zap.Int("columns", len(table.Columns)),
		zap.Int("rows", table.RowCount()),
		zap.Duration("elapsed", time.Since(start)))

	return Execution{Table: table}
}

// driverLabel maps the submitted driver to its registered adapter type so
// free-form form input cannot mint new metric series.
func driverLabel(params models.ConnectionParams) string {
	if t, ok := datasource.CanonicalType(params.DriverOrDefault()); ok {
		return t
	}
	return metrics.DriverUnknown
}

func (s *queryService) fail(params models.ConnectionParams, source, stage string, err error, start time.Time) Execution {
	msg := logging.SanitizeError(err)
	s.metrics.ObserveQuery(driverLabel(params), source, metrics.OutcomeError, time.Since(start))
	s.logger.Error("Statement failed",
		zap.String("connection", params.String()),
		zap.String("source", source),
		zap.String("stage", stage),
		zap.String("error", msg))
	return Execution{Message: "Database error: " + msg}
}
