package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/charts"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/session"
)

// StateSnapshot is the JSON view of one session returned by GET /api/state.
// The API key is never echoed back.
type StateSnapshot struct {
	ShowContact      bool                    `json:"show_contact"`
	ShowSchema       bool                    `json:"show_schema"`
	ShowSQLInput     bool                    `json:"show_sql_input"`
	ShowPrompt       bool                    `json:"show_prompt"`
	ShowGeneratedSQL bool                    `json:"show_generated_sql"`
	QueryError       bool                    `json:"query_error"`
	Connection       models.ConnectionParams `json:"connection"`
	HasAPIKey        bool                    `json:"has_api_key"`
	SchemaLoaded     bool                    `json:"schema_loaded"`
	Schema           *models.SchemaMap       `json:"schema,omitempty"`
	HasGenerated     bool                    `json:"has_generated"`
	GeneratedSQL     string                  `json:"generated_sql,omitempty"`
	Result           *models.ResultTable     `json:"result,omitempty"`
	Chart            charts.Spec             `json:"chart"`
	HasFigure        bool                    `json:"has_figure"`
	Flashes          []session.Flash         `json:"flashes,omitempty"`
}

func snapshot(st *session.State) StateSnapshot {
	snap := StateSnapshot{
		ShowContact:      st.ShowContact,
		ShowSchema:       st.ShowSchema,
		ShowSQLInput:     st.ShowSQLInput,
		ShowPrompt:       st.ShowPrompt,
		ShowGeneratedSQL: st.ShowGeneratedSQL,
		QueryError:       st.QueryError,
		Connection:       st.Connection,
		HasAPIKey:        st.APIKey != "",
		SchemaLoaded:     st.SchemaLoaded,
		HasGenerated:     st.HasGenerated,
		GeneratedSQL:     st.GeneratedSQL,
		Result:           st.Result,
		Chart:            st.Chart,
		HasFigure:        st.Figure != nil,
		Flashes:          st.Flashes(),
	}
	if st.SchemaLoaded {
		snap.Schema = st.Schema
	}
	return snap
}

// State handles GET /api/state. Queued flashes are reported but not consumed.
func (h *DashboardHandler) State(w http.ResponseWriter, r *http.Request) {
	_, st, ok := h.session(w, r)
	if !ok {
		return
	}

	st.Lock()
	snap := snapshot(st)
	st.Unlock()

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: snap}); err != nil {
		h.logger.Error("Failed to encode state response", zap.Error(err))
	}
}

// SchemaYAML handles GET /api/schema.yaml, exporting the loaded schema.
func (h *DashboardHandler) SchemaYAML(w http.ResponseWriter, r *http.Request) {
	_, st, ok := h.session(w, r)
	if !ok {
		return
	}

	st.Lock()
	schema, loaded := st.Schema, st.SchemaLoaded
	st.Unlock()

	if !loaded {
		if err := ErrorResponse(w, http.StatusNotFound, "schema_not_loaded", "Display the schema before exporting it"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="schema.yaml"`)
	if err := WriteYAML(w, http.StatusOK, schema); err != nil {
		h.logger.Error("Failed to encode schema", zap.Error(err))
	}
}

// Adapters handles GET /api/adapters, listing the registered database drivers.
func (h *DashboardHandler) Adapters(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: h.executors.ListTypes()}); err != nil {
		h.logger.Error("Failed to encode adapters response", zap.Error(err))
	}
}
