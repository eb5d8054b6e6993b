package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/artifacts"
	"github.com/abhisek/examgen/internal/observability"
	"github.com/abhisek/examgen/internal/server"
	httpH "github.com/abhisek/examgen/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := cfg.Validate(); err != nil {
			log.Error("invalid configuration", "error", err)
			return fmt.Errorf("invalid configuration: %w", err)
		}

		if strings.EqualFold(cfg.Log.Mode, "prod") || strings.EqualFold(cfg.Log.Mode, "production") {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg.Tracing.Version = version
		shutdownTracing := observability.Init(ctx, log, cfg.Tracing)
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				log.Warn("tracer shutdown failed", "error", err)
			}
		}()

		rt, err := buildRuntime(ctx, cfg, log)
		if err != nil {
			log.Error("startup failed", "error", err)
			return err
		}
		defer rt.Close()

		serviceName := ""
		if cfg.Tracing.Enabled {
			serviceName = cfg.Tracing.ServiceName
		}

		srv := server.NewServer(server.RouterConfig{
			ExamHandler:   httpH.NewExamHandler(rt.orchestrator, log),
			FileHandler:   httpH.NewFileHandler(artifacts.New(rt.renderer.OutputDir())),
			HealthHandler: httpH.NewHealthHandler(),
			Logger:        log,
			ServiceName:   serviceName,
			CORSOrigins:   cfg.Server.CORSOrigins,
			StaticDir:     cfg.Server.StaticDir,
		}, cfg.Server.ShutdownTimeout)

		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides EXAMGEN_ADDR)")
}
