// Package artifacts lists and resolves generated PDFs in the flat output
// directory.
package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

var (
	// ErrNotFound means no generated file has the requested name.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidName means the name could escape the output directory or
	// does not name a PDF.
	ErrInvalidName = errors.New("invalid file name")
)

// File kinds, taken from the generated name's suffix.
const (
	KindExam      = "exam"
	KindAnswerKey = "answer_key"
	KindNotes     = "notes"
)

// File describes one generated PDF.
type File struct {
	Name string `json:"filename"`
	Kind string `json:"kind,omitempty"`
	Size int64  `json:"size"`
	// Created is the modification time in Unix seconds.
	Created float64 `json:"created"`
}

// Dir is the directory generated files live in.
type Dir struct {
	path string
}

// New returns a Dir rooted at path. The directory need not exist yet.
func New(path string) *Dir {
	return &Dir{path: path}
}

// Path is the directory's location on disk.
func (d *Dir) Path() string {
	return d.path
}

// List returns the generated PDFs, newest first. A missing directory
// lists as empty.
func (d *Dir) List() ([]File, error) {
	entries, err := os.ReadDir(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.path, err)
	}

	files := lo.FilterMap(entries, func(e fs.DirEntry, _ int) (File, bool) {
		if e.IsDir() || validName(e.Name()) != nil {
			return File{}, false
		}
		info, err := e.Info()
		if err != nil {
			return File{}, false
		}
		return File{
			Name:    e.Name(),
			Kind:    KindOf(e.Name()),
			Size:    info.Size(),
			Created: unixSeconds(info.ModTime()),
		}, true
	})

	slices.SortStableFunc(files, func(a, b File) int {
		switch {
		case a.Created > b.Created:
			return -1
		case a.Created < b.Created:
			return 1
		default:
			return strings.Compare(a.Name, b.Name)
		}
	})
	return files, nil
}

// Resolve maps a client supplied file name to its path on disk.
func (d *Dir) Resolve(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	p := filepath.Join(d.path, name)
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return p, nil
}

// validName accepts plain, visible .pdf names with no path components.
func validName(name string) error {
	switch {
	case name == "",
		strings.ContainsAny(name, `/\`),
		strings.ContainsRune(name, 0),
		strings.HasPrefix(name, "."),
		filepath.Base(name) != name,
		!strings.EqualFold(filepath.Ext(name), ".pdf"):
		return ErrInvalidName
	}
	return nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// KindOf reports which document a generated file name holds, or "".
func KindOf(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	switch {
	case strings.HasSuffix(stem, "_"+KindAnswerKey):
		return KindAnswerKey
	case strings.HasSuffix(stem, "_"+KindNotes):
		return KindNotes
	case strings.HasSuffix(stem, "_"+KindExam):
		return KindExam
	}
	return ""
}
