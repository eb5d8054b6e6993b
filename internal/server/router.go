// Package server exposes exam generation over HTTP.
package server

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/abhisek/examgen/internal/logger"
	httpH "github.com/abhisek/examgen/internal/server/handlers"
	httpMW "github.com/abhisek/examgen/internal/server/middleware"
)

type RouterConfig struct {
	ExamHandler   *httpH.ExamHandler
	FileHandler   *httpH.FileHandler
	HealthHandler *httpH.HealthHandler

	Logger      *logger.Logger
	ServiceName string
	CORSOrigins []string

	// StaticDir holds the built web UI. It is served under /app when it
	// contains an index.html.
	StaticDir string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Logger))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Generation
	if cfg.ExamHandler != nil {
		r.POST("/generate-exam", cfg.ExamHandler.Generate)
		r.POST("/generate-exam-stream", cfg.ExamHandler.GenerateStream)
	}

	// Generated files
	if cfg.FileHandler != nil {
		r.GET("/download-pdf/:filename", cfg.FileHandler.Download)
		r.GET("/preview-pdf/:filename", cfg.FileHandler.Preview)
		r.GET("/list-exams", cfg.FileHandler.List)
	}

	// Web UI
	if uiBuilt(cfg.StaticDir) {
		r.Static("/app", cfg.StaticDir)
	} else {
		r.GET("/app", httpH.UINotBuilt)
		r.GET("/app/*path", httpH.UINotBuilt)
	}

	return r
}

func uiBuilt(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, "index.html"))
	return err == nil && info.Mode().IsRegular()
}
