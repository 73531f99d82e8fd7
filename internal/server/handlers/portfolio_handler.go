package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
)

// PortfolioService exposes the aggregate valuation operations the HTTP layer
// needs.
type PortfolioService interface {
	Refresh(ctx context.Context) (models.PortfolioSnapshot, error)
	History(ctx context.Context, lookbackDays int) ([]models.ValuationSnapshot, error)
	StoredHistory(ctx context.Context, lookbackDays int) ([]models.ValuationSnapshot, error)
	RunCalving(ctx context.Context) ([]models.CalvingEvent, error)
}

// PortfolioHandler serves the portfolio dashboard endpoints.
type PortfolioHandler struct {
	svc    PortfolioService
	logger *zap.Logger
}

// NewPortfolioHandler constructs the HTTP handler adapter.
func NewPortfolioHandler(svc PortfolioService, logger *zap.Logger) *PortfolioHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioHandler{svc: svc, logger: logger}
}

// GetPortfolio values the whole herd as of now, applying any due calving
// transitions first.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	snap, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		h.logger.Error("portfolio valuation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to value portfolio"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// GetHistory returns the recomputed portfolio value curve. The optional days
// query bounds the lookback.
func (h *PortfolioHandler) GetHistory(c *gin.Context) {
	days, ok := daysParam(c)
	if !ok {
		return
	}

	points, err := h.svc.History(c.Request.Context(), days)
	if err != nil {
		h.logger.Error("portfolio history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

// GetSnapshots returns the persisted nightly points within the lookback.
func (h *PortfolioHandler) GetSnapshots(c *gin.Context) {
	days, ok := daysParam(c)
	if !ok {
		return
	}

	points, err := h.svc.StoredHistory(c.Request.Context(), days)
	if err != nil {
		h.logger.Error("stored snapshot listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list snapshots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

func daysParam(c *gin.Context) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a non-negative integer"})
		return 0, false
	}
	return parsed, true
}

// RunCalving applies due gestation transitions on demand.
func (h *PortfolioHandler) RunCalving(c *gin.Context) {
	events, err := h.svc.RunCalving(c.Request.Context())
	if err != nil {
		h.logger.Error("calving run finished with failures",
			zap.Int("applied", len(events)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "calving run finished with failures",
			"applied": len(events),
			"events":  events,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applied": len(events), "events": events})
}
