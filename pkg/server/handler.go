package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mikeboe/summit-buddy/pkg/chat"
	"github.com/mikeboe/summit-buddy/pkg/dataset"
	"github.com/mikeboe/summit-buddy/pkg/entities"
	"github.com/mikeboe/summit-buddy/pkg/metrics"
	"github.com/mikeboe/summit-buddy/pkg/ratelimit"
)

// DataCacheControl lets CDNs cache the static card data for an hour.
const DataCacheControl = "public, max-age=3600, s-maxage=3600"

// maxEntitiesText bounds POST /api/entities bodies.
const maxEntitiesText = 64 << 10

type Handler struct {
	Chat    *chat.Service
	Data    *dataset.Dataset
	Index   *entities.Index
	Metrics *metrics.Manager
	MCP     http.Handler
}

func NewHandler(c *chat.Service, data *dataset.Dataset, index *entities.Index, m *metrics.Manager, mcpHandler http.Handler) *Handler {
	return &Handler{Chat: c, Data: data, Index: index, Metrics: m, MCP: mcpHandler}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(requestMetrics(h.Metrics))

	r.GET("/healthz", h.health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
	if h.MCP != nil {
		r.Any("/mcp", gin.WrapH(h.MCP))
	}

	api := r.Group("/api")
	{
		api.POST("/chat", h.chat)
		api.GET("/data", h.data)
		api.POST("/entities", h.findEntities)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"sessions":   len(h.Data.Sessions),
		"speakers":   len(h.Data.Speakers),
		"exhibitors": len(h.Data.Exhibitors),
	})
}

func (h *Handler) data(c *gin.Context) {
	c.Header("Cache-Control", DataCacheControl)
	c.JSON(http.StatusOK, h.Data.Cards())
}

func (h *Handler) findEntities(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}
	if len(req.Text) > maxEntitiesText {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Text is too long."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entities": h.Index.FindInText(req.Text)})
}

func (h *Handler) chat(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}
	req.ClientKey = ratelimit.ClientKey(c.Request.Header)

	next, err := h.Chat.Stream(c.Request.Context(), req)
	if err != nil {
		chatErr, ok := chat.AsError(err)
		if !ok {
			slog.Error("Chat failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": chat.MsgGeneric})
			return
		}
		if chatErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(chatErr.RetryAfterSeconds()))
		}
		c.JSON(chatErr.Status, gin.H{"error": chatErr.Message})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for event, err := range next {
		if !writeEvent(c, event) {
			return
		}
		if err != nil {
			// The error event carries the user-facing message; details were logged.
			return
		}
	}
}

func writeEvent(c *gin.Context, event chat.StreamEvent) bool {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode stream event", "type", event.Type, "error", err)
		return false
	}
	if _, err := c.Writer.Write([]byte("data: ")); err != nil {
		return false
	}
	_, _ = c.Writer.Write(data)
	_, _ = c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
	return true
}
