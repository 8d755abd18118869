package api

import (
	"context"
	"errors"
	"mime"
	"net/http"

	"lingoflow/internal/dto/req"
	"lingoflow/internal/dto/resp"
	"lingoflow/internal/export"
	"lingoflow/internal/middleware"
	"lingoflow/internal/repository"
	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/constraints"
	"lingoflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FeatureProvider interface {
	ListFeatures(ctx context.Context, query, version string) ([]v1.Feature, error)
	GetFeature(ctx context.Context, id string) (*v1.Feature, error)
	CreateFeature(ctx context.Context, in v1.CreateFeatureInput) (*v1.Feature, error)
	UpdateFeature(ctx context.Context, id string, in v1.UpdateFeatureInput) (*v1.Feature, error)
	DeleteFeature(ctx context.Context, id string) error
	ListVersions(ctx context.Context) ([]string, error)
	FeatureProgress(ctx context.Context, id string) (*resp.ProgressResponse, error)
	ExportFeature(ctx context.Context, id, format string) (*export.File, error)
	ExportField(ctx context.Context, id, fieldID, format string) (*export.File, error)
	Health(ctx context.Context) error
}

type FeatureHandler struct {
	service FeatureProvider
}

func NewFeatureHandler(service FeatureProvider) *FeatureHandler {
	return &FeatureHandler{service: service}
}

func (h *FeatureHandler) ListFeatures(c *gin.Context) {
	var q req.ListFeaturesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "invalid params"})
		return
	}

	features, err := h.service.ListFeatures(c.Request.Context(), q.Query, q.Version)
	if err != nil {
		h.fail(c, err, "failed to fetch features")
		return
	}
	c.JSON(http.StatusOK, resp.FeatureListResponse{Features: features})
}

func (h *FeatureHandler) GetFeature(c *gin.Context) {
	var uri req.FeatureURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "invalid id"})
		return
	}

	feature, err := h.service.GetFeature(c.Request.Context(), uri.ID)
	if err != nil {
		h.fail(c, err, "failed to fetch feature")
		return
	}
	c.JSON(http.StatusOK, resp.FeatureResponse{Feature: feature})
}

func (h *FeatureHandler) CreateFeature(c *gin.Context) {
	var r req.CreateFeatureRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "invalid request body"})
		return
	}

	feature, err := h.service.CreateFeature(c.Request.Context(), r.Input())
	if err != nil {
		h.fail(c, err, "failed to create feature")
		return
	}
	c.JSON(http.StatusCreated, resp.FeatureResponse{Feature: feature})
}

func (h *FeatureHandler) UpdateFeature(c *gin.Context) {
	var uri req.FeatureURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "invalid id"})
		return
	}
	var r req.UpdateFeatureRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "invalid request body"})
		return
	}

	feature, err := h.service.UpdateFeature(c.Request.Context(), uri.ID, r.Input())
	if err != nil {
		h.fail(c, err, "failed to update feature")
		return
	}
	c.JSON(http.StatusOK, resp.FeatureResponse{Feature: feature})
}

func (h *FeatureHandler) DeleteFeature(c *gin.Context) {
	var uri req.FeatureURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "invalid id"})
		return
	}

	if err := h.service.DeleteFeature(c.Request.Context(), uri.ID); err != nil {
		h.fail(c, err, "failed to delete feature")
		return
	}
	c.JSON(http.StatusOK, resp.DeleteFeatureResponse{Success: true})
}

func (h *FeatureHandler) FeatureProgress(c *gin.Context) {
	var uri req.FeatureURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "invalid id"})
		return
	}

	p, err := h.service.FeatureProgress(c.Request.Context(), uri.ID)
	if err != nil {
		h.fail(c, err, "failed to compute progress")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *FeatureHandler) ExportFeature(c *gin.Context) {
	var uri req.FeatureURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "invalid id"})
		return
	}

	file, err := h.service.ExportFeature(c.Request.Context(), uri.ID, c.DefaultQuery("format", constraints.FormatJSON))
	if err != nil {
		h.fail(c, err, "failed to export feature")
		return
	}
	sendFile(c, file)
}

func (h *FeatureHandler) ExportField(c *gin.Context) {
	var uri req.FieldURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "invalid id"})
		return
	}

	file, err := h.service.ExportField(c.Request.Context(), uri.ID, uri.FieldID, c.Query("format"))
	if err != nil {
		h.fail(c, err, "failed to export field")
		return
	}
	sendFile(c, file)
}

func (h *FeatureHandler) ListVersions(c *gin.Context) {
	versions, err := h.service.ListVersions(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to fetch versions")
		return
	}
	c.JSON(http.StatusOK, resp.VersionsResponse{Versions: versions})
}

func (h *FeatureHandler) HealthCheck(c *gin.Context) {
	if err := h.service.Health(c.Request.Context()); err != nil {
		logger.Warn("health check failed", append(requestFields(c), zap.Error(err))...)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps service errors onto status codes. Backend failures are logged
// and replaced by msg so storage details never reach the client.
func (h *FeatureHandler) fail(c *gin.Context, err error, msg string) {
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: verr.Message})
	case errors.Is(err, repository.ErrFieldNotFound):
		c.JSON(http.StatusNotFound, resp.ErrorResponse{Error: "field not found"})
	case errors.Is(err, repository.ErrFeatureNotFound):
		c.JSON(http.StatusNotFound, resp.ErrorResponse{Error: "feature not found"})
	case errors.Is(err, export.ErrUnknownFormat):
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: err.Error()})
	default:
		logger.Error(msg, append(requestFields(c), zap.Error(err))...)
		c.JSON(http.StatusInternalServerError, resp.ErrorResponse{Error: msg})
	}
}

// requestFields identifies the request in handler logs so they join up with
// the access log line.
func requestFields(c *gin.Context) []zap.Field {
	return []zap.Field{
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.String("trace_id", middleware.TraceID(c.Request.Context())),
	}
}

func sendFile(c *gin.Context, file *export.File) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	c.Data(http.StatusOK, file.ContentType+"; charset=utf-8", file.Content)
}
