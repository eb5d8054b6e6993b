package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/examgen/internal/config"
	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/logger"
	"github.com/abhisek/examgen/internal/pipeline"
	"github.com/abhisek/examgen/internal/render"
	"github.com/abhisek/examgen/internal/store"
)

// runtime is everything a generation needs, built from a validated config.
type runtime struct {
	orchestrator *pipeline.Orchestrator
	renderer     *render.Renderer
	store        *store.Store
}

func (r *runtime) Close() {
	if r.store != nil {
		_ = r.store.Close()
	}
}

// buildRuntime opens the audit log, the LLM provider and the renderer.
// An audit log that fails to open is logged and skipped.
func buildRuntime(ctx context.Context, cfg config.Config, log *logger.Logger) (*runtime, error) {
	rt := &runtime{}

	var repo store.EventRepo
	if !cfg.Store.Disabled {
		path := cfg.Store.Path
		var err error
		if path == "" {
			path, err = store.DefaultDBPath()
		} else {
			err = store.EnsureDir(path)
		}
		if err == nil {
			rt.store, err = store.Open(path)
		}
		if err != nil {
			log.Warn("LLM audit log unavailable", "path", path, "error", err)
		} else {
			repo = rt.store.EventRepo()
			log.Debug("LLM audit log opened", "path", path)
		}
	}

	llmCfg := cfg.LLM
	if llmCfg.Provider == "mock" && llmCfg.MockRespond == nil {
		llmCfg.MockRespond = pipeline.DemoResponder
	}
	provider, err := llm.NewProvider(ctx, llmCfg, log, repo)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("LLM provider: %w", err)
	}

	rt.renderer, err = render.New(cfg.Render)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.orchestrator = pipeline.NewOrchestrator(provider, rt.renderer, cfg.Pipeline, log)
	log.Info("generator ready",
		"provider", llmCfg.Provider,
		"model", llmCfg.ModelID(),
		"output_dir", rt.renderer.OutputDir(),
		"language", cfg.Pipeline.Language,
	)
	return rt, nil
}

// newLogger builds the configured logger.
func newLogger(cfg config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}
