package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examgen/internal/artifacts"
	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/pipeline"
	"github.com/abhisek/examgen/internal/render"
	httpH "github.com/abhisek/examgen/internal/server/handlers"
	"github.com/abhisek/examgen/internal/server/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	engine   *gin.Engine
	provider *llm.MockProvider
	outDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	outDir := t.TempDir()
	renderer, err := render.New(render.Config{OutputDir: outDir})
	require.NoError(t, err)

	provider := llm.NewMockProvider()
	provider.Respond = pipeline.DemoResponder
	orch := pipeline.NewOrchestrator(provider, renderer, pipeline.DefaultConfig(), nil)

	engine := NewRouter(RouterConfig{
		ExamHandler:   httpH.NewExamHandler(orch, nil),
		FileHandler:   httpH.NewFileHandler(artifacts.New(outDir)),
		HealthHandler: httpH.NewHealthHandler(),
		CORSOrigins:   []string{"*"},
	})
	return &testEnv{engine: engine, provider: provider, outDir: outDir}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"knowledge_topic": "Photosynthesis", "subject": "biology", "question_count": 5,
	"question_types": ["multiple_choice", "true_false"]}`

func readEvents(t *testing.T, body []byte) []pipeline.ProgressEvent {
	t.Helper()

	var events []pipeline.ProgressEvent
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev pipeline.ProgressEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	require.NoError(t, sc.Err())
	return events
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.APIError {
	t.Helper()
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/healthcheck", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
}

func TestGenerateStreamThenDownload(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/generate-exam-stream", validBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	events := readEvents(t, rec.Body.Bytes())
	require.NotEmpty(t, events)
	assert.Equal(t, pipeline.StepInitializing, events[0].Step)

	last := events[len(events)-1]
	require.Equal(t, pipeline.StepCompleted, last.Step, "error: %s", last.Error)
	require.NotNil(t, last.Result)
	assert.Equal(t, 100, last.Progress)
	assert.Len(t, last.Result.Questions, 5)

	prev := -1
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.Progress, prev)
		prev = ev.Progress
	}

	rec = env.do(http.MethodGet, "/preview-pdf/"+last.Result.ExamFile, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "inline"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = env.do(http.MethodGet, "/download-pdf/"+last.Result.AnswerKeyFile, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), last.Result.AnswerKeyFile)

	rec = env.do(http.MethodGet, "/list-exams", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Exams []artifacts.File `json:"exams"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	names := make([]string, 0, len(listed.Exams))
	for _, f := range listed.Exams {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{last.Result.ExamFile, last.Result.AnswerKeyFile, last.Result.NotesFile}, names)
}

func TestGenerateStreamRejectsInvalidRequest(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/generate-exam-stream", `{"knowledge_topic": "Fractions", "question_types": []}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	apiErr := decodeError(t, rec)
	assert.Equal(t, response.CodeValidation, apiErr.Code)
	assert.Equal(t, "question_types", apiErr.Field)
	assert.Zero(t, env.provider.CallCount())
}

func TestGenerateStreamRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/generate-exam-stream", `{"knowledge_topic":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.CodeInvalidRequest, decodeError(t, rec).Code)
}

func TestGenerateBlocking(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/generate-exam", validBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success   bool            `json:"success"`
		Title     string          `json:"exam_title"`
		Questions []exam.Question `json:"questions"`
		ExamPath  string          `json:"pdf_path"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Photosynthesis Practice Exam", body.Title)
	assert.Len(t, body.Questions, 5)
	assert.FileExists(t, body.ExamPath)
}

type stubGenerator struct {
	run      func(ctx context.Context) <-chan pipeline.ProgressEvent
	generate error
}

func (s *stubGenerator) Run(ctx context.Context, req exam.GenerationRequest) (<-chan pipeline.ProgressEvent, error) {
	if _, err := req.Normalize(); err != nil {
		return nil, err
	}
	return s.run(ctx), nil
}

func (s *stubGenerator) Generate(ctx context.Context, req exam.GenerationRequest, _ func(pipeline.ProgressEvent)) (*exam.GenerationResult, error) {
	return nil, s.generate
}

func TestGenerateBlockingMapsFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "model returned bad questions",
			err:    &pipeline.StepFailure{Step: pipeline.StepGenerateQuestions, Err: &llm.ErrSchema{Err: assert.AnError}},
			status: http.StatusBadGateway,
			code:   llm.KindSchema,
		},
		{
			name:   "render failed",
			err:    &pipeline.StepFailure{Step: pipeline.StepGeneratePDF, Err: &render.RenderError{Op: "write", Err: assert.AnError}},
			status: http.StatusInternalServerError,
			code:   pipeline.CodeRender,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewRouter(RouterConfig{ExamHandler: httpH.NewExamHandler(&stubGenerator{generate: tt.err}, nil)})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/generate-exam", strings.NewReader(validBody))
			req.Header.Set("Content-Type", "application/json")
			engine.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			apiErr := decodeError(t, rec)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Contains(t, apiErr.Message, "error generating exam")
		})
	}
}

func TestGenerateStreamSendsHeartbeats(t *testing.T) {
	gen := &stubGenerator{run: func(ctx context.Context) <-chan pipeline.ProgressEvent {
		ch := make(chan pipeline.ProgressEvent)
		go func() {
			defer close(ch)
			time.Sleep(60 * time.Millisecond)
			ch <- pipeline.ProgressEvent{Step: pipeline.StepError, Error: "boom", Code: "transport"}
		}()
		return ch
	}}
	engine := NewRouter(RouterConfig{
		ExamHandler: httpH.NewExamHandler(gen, nil).WithHeartbeat(10 * time.Millisecond),
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-exam-stream", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ": ping\n\n")

	events := readEvents(t, rec.Body.Bytes())
	require.Len(t, events, 1)
	assert.Equal(t, pipeline.StepError, events[0].Step)
	assert.Equal(t, "boom", events[0].Error)
}

func TestGenerateStreamStopsWhenClientLeaves(t *testing.T) {
	gen := &stubGenerator{run: func(ctx context.Context) <-chan pipeline.ProgressEvent {
		return make(chan pipeline.ProgressEvent)
	}}
	engine := NewRouter(RouterConfig{ExamHandler: httpH.NewExamHandler(gen, nil)})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/generate-exam-stream", strings.NewReader(validBody)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		engine.ServeHTTP(rec, req)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not return after the client left")
	}
}

func TestFileEndpointsRejectBadNames(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.outDir, "notes.txt"), []byte("x"), 0o644))

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/download-pdf/missing.pdf", http.StatusNotFound, response.CodeNotFound},
		{"/preview-pdf/missing.pdf", http.StatusNotFound, response.CodeNotFound},
		{"/download-pdf/notes.txt", http.StatusBadRequest, response.CodeInvalidName},
		{"/preview-pdf/.hidden.pdf", http.StatusBadRequest, response.CodeInvalidName},
		{"/download-pdf/..%5Csecret.pdf", http.StatusBadRequest, response.CodeInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.path, "")
			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestListExamsEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/list-exams", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"exams": []}`, rec.Body.String())
}

func TestWebUI(t *testing.T) {
	t.Run("not built", func(t *testing.T) {
		engine := NewRouter(RouterConfig{StaticDir: filepath.Join(t.TempDir(), "dist")})
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "Frontend not built")
	})

	t.Run("built", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>examgen</h1>"), 0o644))
		engine := NewRouter(RouterConfig{StaticDir: dir})
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "examgen")
	})
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/generate-exam-stream", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := NewServer(RouterConfig{HealthHandler: httpH.NewHealthHandler()}, time.Second)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthcheck")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
