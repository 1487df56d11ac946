package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/charts"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/config"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/llm"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/metrics"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/services"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/session"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/staging"
	"github.com/ekaya-inc/ekaya-vizboard/ui"
)

// mockExecutors answers schema introspection with schemaTable and everything
// else with resultTable.
type mockExecutors struct {
	mu          sync.Mutex
	schemaTable *models.ResultTable
	resultTable *models.ResultTable
	lastParams  models.ConnectionParams
}

func (m *mockExecutors) NewExecutor(params models.ConnectionParams) (datasource.StatementExecutor, error) {
	m.mu.Lock()
	m.lastParams = params
	m.mu.Unlock()
	return datasource.ExecutorFunc(func(ctx context.Context, sqlText string) (*models.ResultTable, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if strings.Contains(sqlText, "information_schema") {
			return m.schemaTable, nil
		}
		return m.resultTable, nil
	}), nil
}

func (m *mockExecutors) ListTypes() []datasource.DatasourceAdapterInfo {
	return []datasource.DatasourceAdapterInfo{
		{Type: "postgres", DisplayName: "PostgreSQL"},
		{Type: "sqlite", DisplayName: "SQLite"},
	}
}

func (m *mockExecutors) LastParams() models.ConnectionParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastParams
}

type testServer struct {
	mux       *http.ServeMux
	executors *mockExecutors
	llm       *llm.MockLLMClient
	sessions  *session.Store
	collector *metrics.Collector
	cookies   []*http.Cookie
}

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{Provider: llm.ProviderOpenAI},
		UI: config.UIConfig{
			ContactName:  "Vivekanandreddy",
			ContactEmail: "vivekanandreddy05@gmail.com",
			PreviewRows:  5,
		},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	cfg := testConfig()

	execs := &mockExecutors{
		schemaTable: &models.ResultTable{
			Columns: []string{"table_name", "column_name", "data_type"},
			Rows: [][]any{
				{"stations", "id", "integer"},
				{"stations", "name", "text"},
				{"trips", "duration", "integer"},
			},
		},
		resultTable: &models.ResultTable{
			Columns: []string{"region", "units"},
			Rows:    [][]any{{"north", int64(3)}, {"south", int64(5)}, {"north", int64(4)}},
		},
	}

	dir := t.TempDir()
	area := staging.NewArea(
		filepath.Join(dir, "sql_query_schema.txt"),
		filepath.Join(dir, "sql_query_request.txt"),
		logger,
	)

	collector := metrics.NewCollector()
	queries := services.NewQueryService(execs, area, nil, collector, logger)
	client := llm.NewMockLLMClient()
	sqlgen := services.NewSQLGenService(&llm.MockClientFactory{Client: client}, queries, llm.ProviderOpenAI, 0.2, collector, logger)
	dashboard := services.NewDashboardService(
		queries,
		services.NewSchemaService(queries, area, logger),
		sqlgen,
		charts.NewRenderer(collector, logger),
		logger,
	)

	store := session.NewStore(session.Defaults{
		Connection: models.ConnectionParams{Driver: "postgres", Database: "bikes", User: "vivek", Host: "localhost", Port: "5432"},
	})

	handler, err := NewDashboardHandler(cfg, dashboard, store, session.NewCookies("test-secret", false), execs, ui.Assets(), collector, logger)
	require.NoError(t, err)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	return &testServer{
		mux:       mux,
		executors: execs,
		llm:       client,
		sessions:  store,
		collector: collector,
	}
}

// do sends req with the server's session cookie and remembers any cookie set.
func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		s.cookies = cookies
	}
	return rec
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) post(action string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/actions/"+action, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}
