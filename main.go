package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	_ "github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource/mssql"
	_ "github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource/mysql"
	_ "github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource/postgres"
	_ "github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource/sqlite"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/audit"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/charts"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/config"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/handlers"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/llm"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/logging"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/mcp"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/mcp/tools"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/metrics"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/middleware"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/services"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/session"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/staging"
	"github.com/ekaya-inc/ekaya-vizboard/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:   "vizboard",
	Short: "SQL and natural-language data visualization dashboard",
	Long: `A browser dashboard that runs SQL against PostgreSQL, SQL Server, MySQL or SQLite,
turns plain-language requests into SQL through an LLM, and charts the results.

Running vizboard with no subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	RunE:  runServe,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Execute a SQL file against the configured connection and print the rows",
	Long: `Execute a SQL file against the configured default connection.

Example:
  vizboard query --file sql_query/sql_query_request.txt`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringP("file", "f", "", "path of the SQL file to execute")
	queryCmd.Flags().Int("max-rows", 0, "print at most this many rows (0 prints all)")
	_ = queryCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd, queryCmd)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ekaya-vizboard %s\n", Version)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the components shared by every subcommand.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	executors datasource.ExecutorFactory
	collector *metrics.Collector
	queries   services.QueryService
	area      *staging.Area
}

func newApp() (*app, error) {
	cfg, err := config.Load(Version)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	area := staging.NewArea(cfg.Staging.SchemaQueryPath, cfg.Staging.RequestPath, logger)
	executors := datasource.NewExecutorFactory()
	collector := metrics.NewCollector()

	return &app{
		cfg:       cfg,
		logger:    logger,
		executors: executors,
		collector: collector,
		queries:   services.NewQueryService(executors, area, audit.NewSecurityAuditor(logger), collector, logger),
		area:      area,
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	cfg, logger := a.cfg, a.logger

	var adapterTypes []string
	for _, info := range a.executors.ListTypes() {
		adapterTypes = append(adapterTypes, info.Type)
	}
	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("connection", cfg.Connection.Params().String()),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Bool("llm_key_configured", cfg.LLM.APIKey != ""),
		zap.Strings("adapters", adapterTypes))

	if err := a.area.EnsureSchemaQuery(); err != nil {
		return fmt.Errorf("failed to prepare schema query: %w", err)
	}

	clients := llm.NewClientFactory(llm.ProviderConfig{
		Provider:  cfg.LLM.Provider,
		Endpoint:  cfg.LLM.Endpoint,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	}, logger)

	schemas := services.NewSchemaService(a.queries, a.area, logger)
	sqlgen := services.NewSQLGenService(clients, a.queries, clients.Provider(), cfg.LLM.Temperature, a.collector, logger)
	dashboard := services.NewDashboardService(
		a.queries,
		schemas,
		sqlgen,
		charts.NewRenderer(a.collector, logger),
		logger,
	)

	sessions := session.NewStore(session.Defaults{
		Connection: cfg.Connection.Params(),
		APIKey:     cfg.LLM.APIKey,
		ChartTitle: session.DefaultChartTitle,
	})
	cookies := session.NewCookies(cfg.SessionSecret, cfg.SecureCookies)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, sessions, logger).RegisterRoutes(mux)

	dashboardHandler, err := handlers.NewDashboardHandler(cfg, dashboard, sessions, cookies, a.executors, ui.Assets(), a.collector, logger)
	if err != nil {
		return fmt.Errorf("failed to create dashboard handler: %w", err)
	}
	dashboardHandler.RegisterRoutes(mux)

	mux.Handle("GET /metrics", a.collector.Handler())

	auditLogger := mcp.NewAuditLogger(logger)
	mcpServer := mcp.NewServer("ekaya-vizboard", cfg.Version, auditLogger.Hooks(), logger)
	tools.RegisterAll(mcpServer.MCP(), &tools.Deps{
		Queries:    a.queries,
		Schemas:    schemas,
		SQLGen:     sqlgen,
		Connection: cfg.Connection.Params(),
		APIKey:     cfg.LLM.APIKey,
		Logger:     logger.Named("mcp-tools"),
	}, cfg.Version)
	mux.Handle("/mcp", middleware.MCPRequestLogger(logger)(mcpServer.NewStreamableHTTPServer()))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.Chain(mux, middleware.Recoverer(logger), middleware.RequestLogger(logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting ekaya-vizboard",
			zap.String("addr", "http://"+cfg.Addr()),
			zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exited")
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	maxRows, _ := cmd.Flags().GetInt("max-rows")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	exec := a.queries.Execute(cmd.Context(), a.cfg.Connection.Params(), path, audit.SourceCLI)
	if !exec.OK() {
		return errors.New(exec.Message)
	}

	table := exec.Table
	if maxRows > 0 {
		table = table.Head(maxRows)
	}
	if err := printTable(cmd.OutOrStdout(), table); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "(%d rows)\n", exec.Table.RowCount())
	return nil
}

func printTable(w io.Writer, table *models.ResultTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
