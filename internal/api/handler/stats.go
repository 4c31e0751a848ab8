package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/memelab/memeqa/internal/service"
)

// StatsHandler handles statistics, analytics, and export endpoints.
type StatsHandler struct {
	stats      *service.StatsService
	exportOpen bool
}

// NewStatsHandler creates a new stats handler.
// Parameters:
//   - stats: stats service.
//   - exportOpen: whether the research export endpoint is enabled.
// Returns:
//   - *StatsHandler: initialized handler.
func NewStatsHandler(stats *service.StatsService, exportOpen bool) *StatsHandler {
	return &StatsHandler{stats: stats, exportOpen: exportOpen}
}

// Global handles GET /api/v1/stats.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StatsHandler) Global(c *gin.Context) {
	stats, err := h.stats.Global(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Distributions handles GET /api/v1/stats/distributions.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StatsHandler) Distributions(c *gin.Context) {
	dists, err := h.stats.Distributions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load distributions"})
		return
	}
	c.JSON(http.StatusOK, dists)
}

// Analytics handles GET /api/v1/stats/analytics.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StatsHandler) Analytics(c *gin.Context) {
	rows, err := h.stats.MemeAnalytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analytics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"memes": rows})
}

// Export handles GET /api/v1/export. Only available when enabled in
// configuration (development deployments).
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StatsHandler) Export(c *gin.Context) {
	if !h.exportOpen {
		c.JSON(http.StatusForbidden, gin.H{"error": "Export is disabled"})
		return
	}
	export, err := h.stats.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}
	c.JSON(http.StatusOK, export)
}
