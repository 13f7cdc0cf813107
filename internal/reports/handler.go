package reports

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/internal/journey"
	"superlearn/learning-portal/learning-portal-backend/internal/notifications/websocket"
)

// ConnectionLister reports open view streams
type ConnectionLister interface {
	GetConnectionInfo() []websocket.ConnectionInfo
}

type Handler struct {
	service     journey.Service
	quizStep    journey.StepID
	connections ConnectionLister
	options     ExcelOptions
	logger      *zap.Logger
}

// NewHandler creates the reports handler. connections may be nil.
func NewHandler(service journey.Service, quizStep journey.StepID, connections ConnectionLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:     service,
		quizStep:    quizStep,
		connections: connections,
		options:     DefaultExcelOptions(),
		logger:      logger,
	}
}

// RegisterRoutes mounts the report behind guard
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	reports := rg.Group("/reports", guard)
	{
		reports.GET("/sessions", h.Sessions)
		reports.GET("/sessions/summary", h.Summary)
		reports.GET("/connections", h.Connections)
	}
}

// Sessions exports every live session as xlsx, csv or json (?format=)
func (h *Handler) Sessions(c *gin.Context) {
	views := h.service.ListSessions(c.Request.Context())
	rows := make([]SessionRow, len(views))
	for i, v := range views {
		rows[i] = NewSessionRow(v)
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		c.JSON(http.StatusOK, gin.H{"sessions": rows, "count": len(rows)})

	case "csv":
		var buf bytes.Buffer
		if err := WriteCSV(&buf, rows); err != nil {
			h.logger.Error("Failed to export CSV", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="sessions-%s.csv"`, stamp))
		c.Data(http.StatusOK, "text/csv", buf.Bytes())

	case "xlsx":
		data, err := WriteExcel(rows, h.options)
		if err != nil {
			h.logger.Error("Failed to export workbook", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="sessions-%s.xlsx"`, stamp))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", format)})
	}
}

func (h *Handler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, Summarize(h.service.ListSessions(c.Request.Context()), h.quizStep))
}

// Connections lists open view streams
func (h *Handler) Connections(c *gin.Context) {
	info := []websocket.ConnectionInfo{}
	if h.connections != nil {
		info = h.connections.GetConnectionInfo()
	}
	c.JSON(http.StatusOK, gin.H{"connections": info, "count": len(info)})
}
