// Package server exposes a Restorer over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jparkerweb/go-punct"
)

// RequestIDHeader carries the request ID, echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// maxTexts bounds the number of texts in one restore request.
const maxTexts = 256

// Restorer is the subset of *punct.Restorer used by the handlers.
type Restorer interface {
	Restore(ctx context.Context, texts []string) ([]string, error)
	Punctuate(ctx context.Context, text string) (string, error)
}

// RestoreRequest is the body of POST /api/v1/restore.
type RestoreRequest struct {
	Texts []string `json:"texts" binding:"required"`
}

// RestoreResponse lists the sentences of all texts in input order.
type RestoreResponse struct {
	Sentences []string `json:"sentences"`
}

// PunctuateRequest is the body of POST /api/v1/punctuate.
type PunctuateRequest struct {
	Text string `json:"text"`
}

// PunctuateResponse is the punctuated text.
type PunctuateResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is returned for failed requests.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

type handler struct {
	restorer Restorer
	logger   *slog.Logger
}

// New returns a router serving r.
func New(r Restorer, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{restorer: r, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), h.requestID, h.accessLog)

	router.GET("/healthz", h.health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/restore", h.restore)
		v1.POST("/punctuate", h.punctuate)
	}
	return router
}

func (h *handler) requestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(RequestIDHeader, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

func (h *handler) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.logger.Info("request",
		"request_id", c.GetString(RequestIDHeader),
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration", time.Since(start))
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) restore(c *gin.Context) {
	var req RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	if len(req.Texts) > maxTexts {
		h.fail(c, http.StatusRequestEntityTooLarge, errors.New("too many texts"))
		return
	}

	sentences, err := h.restorer.Restore(c.Request.Context(), req.Texts)
	if err != nil {
		h.fail(c, statusFor(err), err)
		return
	}
	if sentences == nil {
		sentences = []string{}
	}
	c.JSON(http.StatusOK, RestoreResponse{Sentences: sentences})
}

func (h *handler) punctuate(c *gin.Context) {
	var req PunctuateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}

	text, err := h.restorer.Punctuate(c.Request.Context(), req.Text)
	if err != nil {
		h.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, PunctuateResponse{Text: text})
}

func (h *handler) fail(c *gin.Context, status int, err error) {
	id := c.GetString(RequestIDHeader)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "request_id", id, "error", err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), RequestID: id})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, punct.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
