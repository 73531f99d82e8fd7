package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/service/pricesync"
)

// SettingsService manages the cost assumptions used by every valuation.
type SettingsService interface {
	ActiveProfile(ctx context.Context) (models.CostProfile, error)
	UpdateProfile(ctx context.Context, profile models.CostProfile) (models.CostProfile, error)
}

// PriceSyncRunner pulls fresh saleyard quotes from the market feed.
type PriceSyncRunner interface {
	Sync(ctx context.Context) (pricesync.Result, error)
}

// SettingsHandler serves cost profile management and the manual price sync
// trigger.
type SettingsHandler struct {
	svc       SettingsService
	priceSync PriceSyncRunner
	logger    *zap.Logger
}

// NewSettingsHandler constructs the HTTP handler adapter. priceSync may be
// nil when no market feed is configured.
func NewSettingsHandler(svc SettingsService, priceSync PriceSyncRunner, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{svc: svc, priceSync: priceSync, logger: logger}
}

type costProfileRequest struct {
	AgistmentMonthly    float64 `json:"agistmentMonthly"`
	FeedMonthly         float64 `json:"feedMonthly"`
	VetMonthly          float64 `json:"vetMonthly"`
	FreightPerKm        float64 `json:"freightPerKm"`
	AnnualMortalityRate float64 `json:"annualMortalityRate"`
	DefaultCalvingRate  float64 `json:"defaultCalvingRate"`
	PigBirthWeightRatio float64 `json:"pigBirthWeightRatio"`
}

// GetCostProfile returns the cost assumptions currently in force.
func (h *SettingsHandler) GetCostProfile(c *gin.Context) {
	profile, err := h.svc.ActiveProfile(c.Request.Context())
	if err != nil {
		h.logger.Error("load cost profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cost profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// PutCostProfile replaces the stored cost assumptions.
func (h *SettingsHandler) PutCostProfile(c *gin.Context) {
	var req costProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid cost profile payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), models.CostProfile{
		AgistmentMonthly:    req.AgistmentMonthly,
		FeedMonthly:         req.FeedMonthly,
		VetMonthly:          req.VetMonthly,
		FreightPerKm:        req.FreightPerKm,
		AnnualMortalityRate: req.AnnualMortalityRate,
		DefaultCalvingRate:  req.DefaultCalvingRate,
		PigBirthWeightRatio: req.PigBirthWeightRatio,
	})
	if err != nil {
		h.logger.Error("update cost profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cost profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RunPriceSync pulls quotes from the market feed on demand.
func (h *SettingsHandler) RunPriceSync(c *gin.Context) {
	if h.priceSync == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no market feed configured"})
		return
	}

	result, err := h.priceSync.Sync(c.Request.Context())
	if err != nil {
		h.logger.Error("price sync failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "price sync failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
