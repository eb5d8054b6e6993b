package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/logger"
	"github.com/abhisek/examgen/internal/pipeline"
	"github.com/abhisek/examgen/internal/server/response"
)

// DefaultHeartbeat is how often an idle progress stream gets a comment
// frame so proxies keep the connection open.
const DefaultHeartbeat = 15 * time.Second

// Generator runs exam generations. *pipeline.Orchestrator implements it.
type Generator interface {
	Run(ctx context.Context, req exam.GenerationRequest) (<-chan pipeline.ProgressEvent, error)
	Generate(ctx context.Context, req exam.GenerationRequest, onEvent func(pipeline.ProgressEvent)) (*exam.GenerationResult, error)
}

type ExamHandler struct {
	gen       Generator
	log       *logger.Logger
	heartbeat time.Duration
}

func NewExamHandler(gen Generator, log *logger.Logger) *ExamHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ExamHandler{gen: gen, log: log, heartbeat: DefaultHeartbeat}
}

// WithHeartbeat sets the idle interval between stream heartbeats.
func (h *ExamHandler) WithHeartbeat(d time.Duration) *ExamHandler {
	if d > 0 {
		h.heartbeat = d
	}
	return h
}

type generateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*exam.GenerationResult
}

// GenerateStream runs one generation and streams its progress events as
// server-sent events. The run stops when the client goes away.
func (h *ExamHandler) GenerateStream(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}

	events, err := h.gen.Run(c.Request.Context(), req)
	if err != nil {
		h.respondRunError(c, err)
		return
	}

	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("progress stream closed by client", "err", ctx.Err())
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			w.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("failed to marshal progress event", "step", ev.Step, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			w.Flush()
		}
	}
}

// Generate runs one generation to completion and returns the result.
func (h *ExamHandler) Generate(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}

	res, err := h.gen.Generate(c.Request.Context(), req, nil)
	if err != nil {
		h.respondRunError(c, err)
		return
	}
	response.RespondOK(c, generateResponse{
		Success:          true,
		Message:          "Exam generated successfully!",
		GenerationResult: res,
	})
}

func bindRequest(c *gin.Context) (exam.GenerationRequest, bool) {
	var req exam.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
		return exam.GenerationRequest{}, false
	}
	return req, true
}

func (h *ExamHandler) respondRunError(c *gin.Context, err error) {
	var ve *exam.ValidationError
	if errors.As(err, &ve) {
		response.RespondFieldError(c, ve.Field, ve)
		return
	}

	_ = c.Error(err)
	code := pipeline.ErrorCode(err)
	response.RespondError(c, statusFor(code), code, fmt.Errorf("error generating exam: %w", err))
}

// statusFor maps a pipeline error code to an HTTP status. Failures of the
// model provider are upstream failures.
func statusFor(code string) int {
	switch code {
	case llm.KindAuth, llm.KindRateLimit, llm.KindSchema, llm.KindTransport, llm.KindMaxTokens:
		return http.StatusBadGateway
	case pipeline.CodeCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}
