package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/audit"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/charts"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/logging"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/session"
)

// Messages shown to the user.
const (
	MsgConnectionHint      = "Please add your database details in the 'Database Connection' section below."
	MsgMissingAPIKey       = "Please enter a Google Gemini API Key to use this feature."
	MsgSchemaAndPrompt     = "Please display the schema first and enter a query requirement."
	MsgQuerySuccess        = "Query executed successfully!"
	MsgGeneratedFailed     = "Failed to execute the generated query."
	MsgGenerateErrorPrefix = "Error generating or executing SQL: "
	MsgEditedSuccess       = "Edited query executed successfully!"
	MsgEditedFailed        = "Failed to execute the edited query"
	MsgInvalidAxis         = "Invalid axis selection"
	MsgReset               = "Session reset successfully!"
)

// DashboardService applies user actions to a session's State. Every method
// takes the state's lock for its whole duration.
type DashboardService interface {
	// Visit queues the one-time connection hint on a session's first page view.
	Visit(st *session.State)

	ToggleContact(st *session.State)
	ToggleSQLInput(st *session.State)
	TogglePrompt(st *session.State)
	ToggleGeneratedSQL(st *session.State)

	// ToggleSchema flips schema visibility and reloads the schema when it
	// becomes visible. A result without the required columns is returned as
	// an error.
	ToggleSchema(ctx context.Context, st *session.State) error

	UpdateConnection(st *session.State, params models.ConnectionParams)
	UpdateAPIKey(st *session.State, apiKey string)

	RunQuery(ctx context.Context, st *session.State, sqlText string)
	RunGenerated(ctx context.Context, st *session.State, instruction string)
	RerunEdited(ctx context.Context, st *session.State, sqlText string)

	// Plot renders a chart from the last result. On failure the previous
	// figure is kept.
	Plot(st *session.State, spec charts.Spec)

	Reset(st *session.State)
}

type dashboardService struct {
	queries  QueryService
	schemas  SchemaService
	sqlgen   SQLGenService
	renderer *charts.Renderer
	logger   *zap.Logger
}

// NewDashboardService creates the dashboard controller.
func NewDashboardService(
	queries QueryService,
	schemas SchemaService,
	sqlgen SQLGenService,
	renderer *charts.Renderer,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{
		queries:  queries,
		schemas:  schemas,
		sqlgen:   sqlgen,
		renderer: renderer,
		logger:   logger.Named("dashboard"),
	}
}

var _ DashboardService = (*dashboardService)(nil)

func (d *dashboardService) Visit(st *session.State) {
	st.Lock()
	defer st.Unlock()
	if !st.ConnectionHinted {
		st.AddFlash(session.LevelWarning, MsgConnectionHint)
		st.ConnectionHinted = true
	}
}

func (d *dashboardService) ToggleContact(st *session.State) {
	st.Lock()
	defer st.Unlock()
	st.ShowContact = !st.ShowContact
}

func (d *dashboardService) ToggleSQLInput(st *session.State) {
	st.Lock()
	defer st.Unlock()
	st.ShowSQLInput = !st.ShowSQLInput
}

func (d *dashboardService) TogglePrompt(st *session.State) {
	st.Lock()
	defer st.Unlock()
	st.ShowPrompt = !st.ShowPrompt
}

func (d *dashboardService) ToggleGeneratedSQL(st *session.State) {
	st.Lock()
	defer st.Unlock()
	st.ShowGeneratedSQL = !st.ShowGeneratedSQL
}

func (d *dashboardService) ToggleSchema(ctx context.Context, st *session.State) error {
	st.Lock()
	defer st.Unlock()

	st.ShowSchema = !st.ShowSchema
	if !st.ShowSchema {
		return nil
	}

	load, err := d.schemas.Load(ctx, st.Connection)
	if err != nil {
		return err
	}
	if !load.Execution.OK() {
		st.AddFlash(session.LevelError, load.Execution.Message)
		return nil
	}

	st.Schema = load.Schema
	st.SchemaText = load.Text
	st.SchemaLoaded = true
	return nil
}

func (d *dashboardService) UpdateConnection(st *session.State, params models.ConnectionParams) {
	st.Lock()
	defer st.Unlock()
	st.Connection = params
}

func (d *dashboardService) UpdateAPIKey(st *session.State, apiKey string) {
	st.Lock()
	defer st.Unlock()
	st.APIKey = strings.TrimSpace(apiKey)
}

func (d *dashboardService) RunQuery(ctx context.Context, st *session.State, sqlText string) {
	st.Lock()
	defer st.Unlock()

	st.SQLText = sqlText
	exec := d.queries.Run(ctx, st.Connection, sqlText, audit.SourceUI)
	if !exec.OK() {
		st.AddFlash(session.LevelError, exec.Message)
		return
	}
	st.Result = exec.Table
	st.AddFlash(session.LevelSuccess, MsgQuerySuccess)
}

func (d *dashboardService) RunGenerated(ctx context.Context, st *session.State, instruction string) {
	st.Lock()
	defer st.Unlock()

	st.Instruction = instruction
	if st.APIKey == "" {
		st.AddFlash(session.LevelError, MsgMissingAPIKey)
		return
	}
	if !st.SchemaLoaded || strings.TrimSpace(instruction) == "" {
		st.AddFlash(session.LevelError, MsgSchemaAndPrompt)
		return
	}

	run, err := d.sqlgen.RunGenerated(ctx, st.Connection, st.APIKey, st.SchemaText, instruction)
	st.HasGenerated = true
	if err != nil {
		st.GeneratedSQL = ""
		st.QueryError = true
		if errors.Is(err, apperrors.ErrMissingAPIKey) {
			st.AddFlash(session.LevelError, MsgMissingAPIKey)
			return
		}
		st.AddFlash(session.LevelError, MsgGenerateErrorPrefix+logging.SanitizeError(err))
		return
	}

	st.GeneratedSQL = run.SQL
	if !run.Execution.OK() {
		st.QueryError = true
		st.AddFlash(session.LevelError, run.Execution.Message)
		st.AddFlash(session.LevelError, MsgGeneratedFailed)
		return
	}

	st.Result = run.Execution.Table
	st.QueryError = false
	st.AddFlash(session.LevelSuccess, MsgQuerySuccess)
}

func (d *dashboardService) RerunEdited(ctx context.Context, st *session.State, sqlText string) {
	st.Lock()
	defer st.Unlock()

	if !st.QueryError {
		d.logger.Debug("Ignoring rerun without a failed generated query")
		return
	}

	st.GeneratedSQL = sqlText
	exec := d.queries.Run(ctx, st.Connection, sqlText, audit.SourceUI)
	if !exec.OK() {
		st.AddFlash(session.LevelError, exec.Message)
		st.AddFlash(session.LevelError, MsgEditedFailed)
		return
	}

	st.Result = exec.Table
	st.QueryError = false
	st.AddFlash(session.LevelSuccess, MsgEditedSuccess)
}

func (d *dashboardService) Plot(st *session.State, spec charts.Spec) {
	st.Lock()
	defer st.Unlock()

	st.Chart = spec
	if st.Result == nil {
		return
	}

	if err := charts.Validate(st.Result, spec); errors.Is(err, charts.ErrInvalidAxis) || errors.Is(err, charts.ErrInvalidHueColumn) {
		st.AddFlash(session.LevelError, MsgInvalidAxis)
		return
	}

	if fig := d.renderer.Render(st.Result, spec); fig != nil {
		st.Figure = fig
	}
}

func (d *dashboardService) Reset(st *session.State) {
	st.Lock()
	defer st.Unlock()
	st.Reset()
	st.AddFlash(session.LevelSuccess, MsgReset)
}
