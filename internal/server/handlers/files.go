package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/examgen/internal/artifacts"
	"github.com/abhisek/examgen/internal/server/response"
)

type FileHandler struct {
	dir *artifacts.Dir
}

func NewFileHandler(dir *artifacts.Dir) *FileHandler {
	return &FileHandler{dir: dir}
}

// Download serves a generated PDF as an attachment.
func (h *FileHandler) Download(c *gin.Context) {
	name := c.Param("filename")
	path, ok := h.resolve(c, name)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(path, name)
}

// Preview serves a generated PDF for display in the browser.
func (h *FileHandler) Preview(c *gin.Context) {
	name := c.Param("filename")
	path, ok := h.resolve(c, name)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	c.Header("Cache-Control", "no-cache")
	c.File(path)
}

// List returns every generated PDF, newest first.
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.dir.List()
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err)
		return
	}
	response.RespondOK(c, gin.H{"exams": files})
}

func (h *FileHandler) resolve(c *gin.Context, name string) (string, bool) {
	path, err := h.dir.Resolve(name)
	switch {
	case err == nil:
		return path, true
	case errors.Is(err, artifacts.ErrInvalidName):
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidName, err)
	case errors.Is(err, artifacts.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, response.CodeNotFound, errors.New("File not found"))
	default:
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err)
	}
	return "", false
}
