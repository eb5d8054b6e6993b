// Package render writes exam papers, answer keys and study notes as PDF.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/abhisek/examgen/internal/exam"
)

// Config controls PDF output.
type Config struct {
	// OutputDir is the flat directory generated files are written to.
	OutputDir string `yaml:"output_dir"`

	// FontPath optionally points at a UTF-8 TrueType font. Without one the
	// core Helvetica font is used and text is translated to cp1252, which
	// cannot show CJK scripts.
	FontPath string `yaml:"font_path"`

	// Compress enables stream compression. Tests turn it off so page text
	// can be read back.
	Compress bool `yaml:"compress"`
}

// DefaultConfig writes compressed PDFs to ./generated_exams.
func DefaultConfig() Config {
	return Config{
		OutputDir: "generated_exams",
		Compress:  true,
	}
}

// Document is everything needed to render one run.
type Document struct {
	// ID distinguishes runs that share topic, difficulty and second.
	ID        string
	Request   exam.GenerationRequest
	Metadata  exam.Metadata
	Questions []exam.Question
	Notes     *exam.StudyNotes
}

// Paths names the files written for a Document.
type Paths struct {
	ExamFile      string
	AnswerKeyFile string
	NotesFile     string
	ExamPath      string
	AnswerKeyPath string
	NotesPath     string
}

// RenderError reports a failed render. No partial output is left behind.
type RenderError struct {
	Op   string
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("render: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("render: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer produces the three PDFs for a run. It is safe for concurrent
// use; every call builds its own documents.
type Renderer struct {
	config Config
	font   []byte
	now    func() time.Time
}

// New creates the output directory and loads the optional font.
func New(cfg Config) (*Renderer, error) {
	if cfg.OutputDir == "" {
		return nil, errors.New("render: output directory is required")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("render: create output directory: %w", err)
	}

	r := &Renderer{config: cfg, now: time.Now}
	if cfg.FontPath != "" {
		font, err := os.ReadFile(cfg.FontPath)
		if err != nil {
			return nil, fmt.Errorf("render: load font: %w", err)
		}
		r.font = font
	}
	return r, nil
}

// OutputDir is the directory files are written to.
func (r *Renderer) OutputDir() string {
	return r.config.OutputDir
}

type output struct {
	suffix string
	build  func(*page, Document)
}

var outputs = []output{
	{"exam", func(p *page, d Document) { writeExam(p, d, false) }},
	{"answer_key", func(p *page, d Document) { writeExam(p, d, true) }},
	{"notes", writeNotes},
}

// Render writes the exam paper, answer key and study notes. Files are
// built as hidden temp files and renamed into place only once all three
// succeed; on failure nothing is left in the output directory.
func (r *Renderer) Render(ctx context.Context, doc Document) (Paths, error) {
	base := baseName(doc, r.now())

	var (
		temps   []string
		renamed []string
	)
	cleanup := func() {
		for _, p := range append(temps, renamed...) {
			_ = os.Remove(p)
		}
	}

	for _, o := range outputs {
		if err := ctx.Err(); err != nil {
			cleanup()
			return Paths{}, &RenderError{Op: "build", Err: err}
		}

		p := r.newPage(doc)
		o.build(p, doc)

		tmp, err := r.writeTemp(p.pdf, o.suffix)
		if tmp != "" {
			temps = append(temps, tmp)
		}
		if err != nil {
			cleanup()
			return Paths{}, err
		}
	}

	names := make([]string, len(outputs))
	for i, o := range outputs {
		names[i] = fmt.Sprintf("%s_%s.pdf", base, o.suffix)
		final := filepath.Join(r.config.OutputDir, names[i])
		if err := os.Rename(temps[i], final); err != nil {
			cleanup()
			return Paths{}, &RenderError{Op: "rename", Path: final, Err: err}
		}
		renamed = append(renamed, final)
	}

	return Paths{
		ExamFile:      names[0],
		AnswerKeyFile: names[1],
		NotesFile:     names[2],
		ExamPath:      renamed[0],
		AnswerKeyPath: renamed[1],
		NotesPath:     renamed[2],
	}, nil
}

// writeTemp serializes pdf into a hidden temp file in the output
// directory. The temp path is returned even on failure so it can be
// removed.
func (r *Renderer) writeTemp(pdf *fpdf.Fpdf, suffix string) (string, error) {
	if err := pdf.Error(); err != nil {
		return "", &RenderError{Op: "build " + suffix, Err: err}
	}

	f, err := os.CreateTemp(r.config.OutputDir, ".examgen-"+suffix+"-*.tmp")
	if err != nil {
		return "", &RenderError{Op: "create", Path: r.config.OutputDir, Err: err}
	}

	if err := pdf.Output(f); err != nil {
		f.Close()
		return f.Name(), &RenderError{Op: "write", Path: f.Name(), Err: err}
	}
	if err := f.Close(); err != nil {
		return f.Name(), &RenderError{Op: "close", Path: f.Name(), Err: err}
	}
	return f.Name(), nil
}

// baseName is "<safe_topic>_<difficulty>_<yyyymmdd_hhmmss>_<id8>".
func baseName(doc Document, now time.Time) string {
	id := strings.ReplaceAll(doc.ID, "-", "")
	if id == "" {
		id = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%s_%s_%s",
		SafeFilename(doc.Request.KnowledgeTopic),
		SafeFilename(string(doc.Request.Difficulty)),
		now.Format("20060102_150405"),
		SafeFilename(id),
	)
}
