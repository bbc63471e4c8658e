package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lecturecast/dto"
	"lecturecast/repository"
	"lecturecast/service"
)

type Handler struct {
	svc service.Service
}

func New(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: err.Error()})
}

func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "expected multipart form upload"})
		return
	}

	var files []service.UploadFile
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(c, err)
			return
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(fh.Filename))
		}
		if i := strings.IndexByte(contentType, ';'); i >= 0 {
			contentType = strings.TrimSpace(contentType[:i])
		}

		files = append(files, service.UploadFile{
			Name:        fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	resp, err := h.svc.Upload(c.Request.Context(), files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListRecordings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListRecordings())
}

func (h *Handler) GetTranscript(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid recording id"})
		return
	}
	transcript, err := h.svc.GetTranscript(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transcript)
}

func (h *Handler) Transcribe(c *gin.Context) {
	resp, err := h.svc.Transcribe(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status())
}

func (h *Handler) GroupLectures(c *gin.Context) {
	lectures, err := h.svc.GroupLectures(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GroupResponse{Lectures: lectures})
}

func (h *Handler) ListLectures(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListLectures())
}

func (h *Handler) GetLecture(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid lecture id"})
		return
	}
	lecture, err := h.svc.GetLecture(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lecture)
}

func (h *Handler) ExportLectures(c *gin.Context) {
	data, err := h.svc.ExportLectures()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="lectures.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handler) GenerateScript(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid lecture id"})
		return
	}
	var req dto.GenerateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "format is required"})
		return
	}
	script, err := h.svc.GenerateScript(c.Request.Context(), id, req.Format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, script)
}

func (h *Handler) ListScripts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid lecture id"})
		return
	}
	scripts, err := h.svc.ListScripts(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scripts)
}

func (h *Handler) Reset(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Status())
}
