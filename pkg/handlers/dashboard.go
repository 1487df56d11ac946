package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/audit"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/charts"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/config"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/llm"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/logging"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/metrics"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/services"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/session"
)

// Dashboard actions, posted to /actions/{action}.
const (
	ActionConnect         = "connect"
	ActionToggleContact   = "toggle-contact"
	ActionToggleSchema    = "toggle-schema"
	ActionToggleSQL       = "toggle-sql"
	ActionTogglePrompt    = "toggle-prompt"
	ActionToggleGenerated = "toggle-generated"
	ActionRunQuery        = "run-query"
	ActionGenerate        = "generate"
	ActionRerun           = "rerun"
	ActionPlot            = "plot"
	ActionReset           = "reset"
)

var knownActions = map[string]bool{
	ActionConnect:         true,
	ActionToggleContact:   true,
	ActionToggleSchema:    true,
	ActionToggleSQL:       true,
	ActionTogglePrompt:    true,
	ActionToggleGenerated: true,
	ActionRunQuery:        true,
	ActionGenerate:        true,
	ActionRerun:           true,
	ActionPlot:            true,
	ActionReset:           true,
}

// DashboardHandler serves the dashboard page and applies its form actions.
type DashboardHandler struct {
	dashboard services.DashboardService
	sessions  *session.Store
	cookies   *session.Cookies
	executors datasource.ExecutorFactory
	assets    fs.FS
	templates *template.Template
	settings  viewSettings
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// NewDashboardHandler creates a dashboard handler. assets must hold
// templates/*.html and static/. collector may be nil.
func NewDashboardHandler(
	cfg *config.Config,
	dashboard services.DashboardService,
	sessions *session.Store,
	cookies *session.Cookies,
	executors datasource.ExecutorFactory,
	assets fs.FS,
	collector *metrics.Collector,
	logger *zap.Logger,
) (*DashboardHandler, error) {
	tmpl, err := parseTemplates(assets)
	if err != nil {
		return nil, fmt.Errorf("parse dashboard templates: %w", err)
	}

	return &DashboardHandler{
		dashboard: dashboard,
		sessions:  sessions,
		cookies:   cookies,
		executors: executors,
		assets:    assets,
		templates: tmpl,
		settings: viewSettings{
			ContactName:  cfg.UI.ContactName,
			ContactEmail: cfg.UI.ContactEmail,
			PreviewRows:  cfg.UI.PreviewRows,
			APIKeyLabel:  apiKeyLabel(cfg.LLM.Provider),
		},
		metrics: collector,
		logger:  logger.Named("dashboard-handler"),
	}, nil
}

// RegisterRoutes registers the dashboard routes on the given mux.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Page)
	mux.HandleFunc("POST /actions/{action}", h.Action)
	mux.HandleFunc("GET /chart.svg", h.Chart)
	mux.HandleFunc("GET /api/state", h.State)
	mux.HandleFunc("GET /api/schema.yaml", h.SchemaYAML)
	mux.HandleFunc("GET /api/adapters", h.Adapters)
	mux.Handle("GET /static/", http.FileServerFS(h.assets))
}

func apiKeyLabel(provider string) string {
	if provider == llm.ProviderAnthropic {
		return "Anthropic API Key"
	}
	return "Google Gemini API Key"
}

// session resolves the caller's State, issuing a session cookie when needed.
func (h *DashboardHandler) session(w http.ResponseWriter, r *http.Request) (string, *session.State, bool) {
	id, err := h.cookies.ID(w, r)
	if err != nil {
		h.logger.Error("Failed to resolve session", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "session_error", "Failed to start a session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", nil, false
	}
	return id, h.sessions.Get(id), true
}

// Page handles GET / and renders the dashboard.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	_, st, ok := h.session(w, r)
	if !ok {
		return
	}

	h.dashboard.Visit(st)

	st.Lock()
	view := buildPageView(st, st.TakeFlashes(), h.executors.ListTypes(), h.settings)
	st.Unlock()

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "dashboard", view); err != nil {
		h.logger.Error("Failed to render dashboard", zap.Error(err))
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("Failed to write dashboard", zap.Error(err))
	}
}

// Action handles POST /actions/{action}. The sidebar posts the connection
// and API key fields with every action; they are applied before the action
// runs. Responds 303 to / on success.
func (h *DashboardHandler) Action(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	if !knownActions[action] {
		if err := ErrorResponse(w, http.StatusNotFound, "unknown_action", fmt.Sprintf("no action named %q", action)); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := r.ParseForm(); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_form", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	sid, st, ok := h.session(w, r)
	if !ok {
		return
	}
	ctx := audit.WithSessionID(r.Context(), sid)
	form := r.PostForm

	if params, ok := connectionFromForm(form); ok {
		h.dashboard.UpdateConnection(st, params)
	}
	if form.Has("api_key") {
		h.dashboard.UpdateAPIKey(st, form.Get("api_key"))
	}

	switch action {
	case ActionConnect:
	case ActionToggleContact:
		h.dashboard.ToggleContact(st)
	case ActionToggleSchema:
		if err := h.dashboard.ToggleSchema(ctx, st); err != nil {
			h.logger.Error("Failed to load schema", zap.String("session_id", sid), zap.Error(err))
			code := "internal_error"
			if errors.Is(err, apperrors.ErrMissingColumns) {
				code = "schema_error"
			}
			if err := ErrorResponse(w, http.StatusInternalServerError, code, logging.SanitizeError(err)); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
	case ActionToggleSQL:
		h.dashboard.ToggleSQLInput(st)
	case ActionTogglePrompt:
		h.dashboard.TogglePrompt(st)
	case ActionToggleGenerated:
		h.dashboard.ToggleGeneratedSQL(st)
	case ActionRunQuery:
		h.dashboard.RunQuery(ctx, st, form.Get("sql"))
	case ActionGenerate:
		h.dashboard.RunGenerated(ctx, st, form.Get("instruction"))
	case ActionRerun:
		h.dashboard.RerunEdited(ctx, st, form.Get("edited_sql"))
	case ActionPlot:
		spec, err := chartSpecFromForm(form)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_chart", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.dashboard.Plot(st, spec)
	case ActionReset:
		h.dashboard.Reset(st)
	}

	h.metrics.ObserveAction(action)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// connectionFromForm reads the sidebar connection fields. It reports false
// when the form does not carry them.
func connectionFromForm(form url.Values) (models.ConnectionParams, bool) {
	if !form.Has("database") {
		return models.ConnectionParams{}, false
	}
	return models.ConnectionParams{
		Driver:   strings.TrimSpace(form.Get("driver")),
		Database: strings.TrimSpace(form.Get("database")),
		User:     strings.TrimSpace(form.Get("user")),
		Password: form.Get("password"),
		Host:     strings.TrimSpace(form.Get("host")),
		Port:     strings.TrimSpace(form.Get("port")),
	}, true
}

func chartSpecFromForm(form url.Values) (charts.Spec, error) {
	kind, err := charts.ParseKind(form.Get("kind"))
	if err != nil {
		return charts.Spec{}, err
	}
	hue := form.Get("hue")
	if hue == noHue {
		hue = ""
	}
	return charts.Spec{
		Kind:  kind,
		X:     form.Get("x"),
		Y:     form.Get("y"),
		Hue:   hue,
		Title: form.Get("title"),
	}, nil
}

// Chart handles GET /chart.svg with the session's latest figure.
func (h *DashboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	_, st, ok := h.session(w, r)
	if !ok {
		return
	}

	st.Lock()
	fig := st.Figure
	st.Unlock()

	if fig == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "no_figure", "No chart has been rendered"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(fig.SVG); err != nil {
		h.logger.Debug("Failed to write chart", zap.Error(err))
	}
}
