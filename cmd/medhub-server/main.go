package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/medhub/medhub/internal/agent/orchestrator"
	"github.com/medhub/medhub/internal/config"
	"github.com/medhub/medhub/internal/domain/agents"
	"github.com/medhub/medhub/internal/domain/appointment"
	"github.com/medhub/medhub/internal/domain/identity"
	"github.com/medhub/medhub/internal/domain/inbox"
	"github.com/medhub/medhub/internal/domain/insurance"
	"github.com/medhub/medhub/internal/domain/knowledge"
	"github.com/medhub/medhub/internal/domain/records"
	"github.com/medhub/medhub/internal/platform/auth"
	"github.com/medhub/medhub/internal/platform/db"
	"github.com/medhub/medhub/internal/platform/middleware"
	"github.com/medhub/medhub/internal/platform/notification"
	"github.com/medhub/medhub/internal/platform/websocket"
	"github.com/medhub/medhub/migrations"
)

const (
	version         = "0.1.0"
	shutdownTimeout = 10 * time.Second
	maxBodySize     = "2M"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "medhub-server",
		Short:        "Medical records API with specialist research agents",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(ingestCmd())
	return rootCmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// loadConfig loads and validates configuration and builds the logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, newLogger(cfg), nil
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
}

func txRunner(pool *pgxpool.Pool) func(ctx context.Context, fn func(ctx context.Context) error) error {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.InTx(ctx, pool, fn)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServer(cmd.Context(), migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", cfg.DBSchema)
			count, err := db.NewMigrator(pool, migrations.Files, cfg.DBSchema).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.Files, cfg.DBSchema).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Migration status for schema: %s\n", cfg.DBSchema)
			fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Route one query through the specialist agents and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var retriever orchestrator.Retriever
			if cfg.RetrievalEnabled {
				pool, err := openPool(ctx, cfg)
				if err != nil {
					logger.Warn().Err(err).Msg("retrieval disabled: database unavailable")
				} else {
					defer pool.Close()
					retriever = knowledge.NewService(knowledge.NewRepo(pool), txRunner(pool), logger)
				}
			}

			stack, err := buildAgents(ctx, cfg, logger, retriever)
			if err != nil {
				return err
			}
			ans := stack.orchestrator.Handle(ctx, orchestrator.NewSession(), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n%s\n", ans.Category, ans.Response)
			return nil
		},
	}
	return cmd
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Load a text file into the retrieval store, one passage per paragraph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			if source == "" {
				source = filepath.Base(args[0])
			}
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := knowledge.NewService(knowledge.NewRepo(pool), txRunner(pool), logger)
			stored, err := svc.Ingest(ctx, knowledge.IngestRequest{Source: source, Text: string(text)})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d passage(s) from %s.\n", len(stored), source)
			return nil
		},
	}
	cmd.Flags().String("source", "", "Source label stored with each passage (defaults to the file name)")
	return cmd
}

func runServer(parent context.Context, migrate bool) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	if migrate {
		n, err := db.NewMigrator(pool, migrations.Files, cfg.DBSchema).Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Int("applied", n).Msg("migrations applied")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Auth middleware
	switch cfg.ResolvedAuthMode() {
	case "development":
		logger.Warn().Msg("development auth enabled: unauthenticated requests act as admin")
		e.Use(auth.DevAuthMiddleware())
	default:
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	// Health
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": version})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Real-time push and call signaling
	hub := websocket.NewHub(logger)
	websocket.NewHandler(hub, logger, cfg.CORSOrigins).RegisterRoutes(e.Group("/ws"))

	apiV1 := e.Group("/api/v1")
	inTx := txRunner(pool)

	// Identity
	identitySvc := identity.NewService(
		identity.NewUserRepo(pool),
		identity.NewDoctorRepo(pool),
		identity.NewResearcherRepo(pool),
		identity.NewPatientProfileRepo(pool),
	)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)

	// Notifications
	inboxSvc := inbox.NewService(inbox.NewRepo(pool), hub, logger)
	inbox.NewHandler(inboxSvc).RegisterRoutes(apiV1)
	sender := notification.NewSender(notification.NewTemplateEngine(), inboxSvc, hub, logger)

	// Medical records
	recordsSvc := records.NewService(
		records.NewVisitRepo(pool),
		records.NewPrescriptionRepo(pool),
		records.NewAllergyRepo(pool),
		records.NewLabResultRepo(pool),
		identitySvc, sender, logger,
	)
	records.NewHandler(recordsSvc).RegisterRoutes(apiV1)
	records.NewDashboardHandler(records.NewDashboard(records.NewDashboardRepo(pool), identitySvc)).RegisterRoutes(apiV1)

	// Insurance and claims
	insuranceSvc := insurance.NewService(insurance.NewPolicyRepo(pool), insurance.NewClaimRepo(pool), recordsSvc, logger)
	insurance.NewHandler(insuranceSvc).RegisterRoutes(apiV1)

	// Appointments
	appointmentSvc := appointment.NewService(appointment.NewRepo(pool), recordsSvc, sender, identitySvc, inTx, logger)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(apiV1)

	// Retrieval corpus
	knowledgeSvc := knowledge.NewService(knowledge.NewRepo(pool), inTx, logger)
	knowledge.NewHandler(knowledgeSvc).RegisterRoutes(apiV1)

	// Specialist agents
	var retriever orchestrator.Retriever
	if cfg.RetrievalEnabled {
		retriever = knowledgeSvc
	}
	stack, err := buildAgents(ctx, cfg, logger, retriever)
	if err != nil {
		return fmt.Errorf("build agents: %w", err)
	}
	agentsSvc := agents.NewService(stack.orchestrator, stack.compliance, orchestrator.NewSessionStore(), cfg.SampleResponsesEnabled, logger)
	agents.NewHandler(agentsSvc).RegisterRoutes(apiV1, agentRateLimit())

	// Serve until a signal arrives, then drain
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// agentRateLimit buckets model-backed requests per authenticated user,
// falling back to the client IP.
func agentRateLimit() echo.MiddlewareFunc {
	cfg := middleware.DefaultRateLimitConfig()
	cfg.KeyFunc = rateLimitKey
	return middleware.RateLimit(cfg)
}

func rateLimitKey(c echo.Context) string {
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.RealIP()
}
