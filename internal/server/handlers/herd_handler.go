package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/repository/mongodb"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/service/herd"
)

// HerdService is the slice of the herd service used by the HTTP layer.
type HerdService interface {
	Create(ctx context.Context, in herd.CreateGroupInput) (models.LivestockGroup, error)
	Update(ctx context.Context, id string, in herd.CreateGroupInput) (models.LivestockGroup, error)
	Get(ctx context.Context, id string) (models.LivestockGroup, error)
	List(ctx context.Context, includeSold bool) ([]models.LivestockGroup, error)
	Valuation(ctx context.Context, id string, asOf *time.Time) (models.ValuationResult, error)
	Sell(ctx context.Context, id string, soldAt *time.Time, pricePerKg decimal.Decimal) (models.LivestockGroup, error)
}

// HerdHandler serves the livestock group CRUD and per-group valuation
// endpoints.
type HerdHandler struct {
	svc    HerdService
	logger *zap.Logger
}

// NewHerdHandler constructs the HTTP handler adapter.
func NewHerdHandler(svc HerdService, logger *zap.Logger) *HerdHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HerdHandler{svc: svc, logger: logger}
}

type createGroupRequest struct {
	Species         string     `json:"species" binding:"required"`
	Breed           string     `json:"breed"`
	Sex             string     `json:"sex"`
	Category        string     `json:"category" binding:"required"`
	HeadCount       int        `json:"headCount" binding:"required"`
	InitialWeightKg float64    `json:"initialWeightKg" binding:"required"`
	DailyGainKg     float64    `json:"dailyGainKg"`
	AgeMonths       *int       `json:"ageMonths"`
	BirthDate       *time.Time `json:"birthDate"`
	ReferenceDate   *time.Time `json:"referenceDate"`
	IsBreeder       bool       `json:"isBreeder"`
	IsPregnant      bool       `json:"isPregnant"`
	CalvingRate     *float64   `json:"calvingRate"`
	JoiningStart    *time.Time `json:"joiningStart"`
	JoiningEnd      *time.Time `json:"joiningEnd"`
	SaleyardVenue   string     `json:"saleyardVenue"`
	Notes           string     `json:"notes"`
}

func (r createGroupRequest) toInput() herd.CreateGroupInput {
	in := herd.CreateGroupInput{
		Species:         models.Species(r.Species),
		Breed:           r.Breed,
		Sex:             r.Sex,
		Category:        r.Category,
		HeadCount:       r.HeadCount,
		InitialWeightKg: r.InitialWeightKg,
		DailyGainKg:     r.DailyGainKg,
		AgeMonths:       r.AgeMonths,
		BirthDate:       r.BirthDate,
		IsBreeder:       r.IsBreeder,
		IsPregnant:      r.IsPregnant,
		CalvingRate:     r.CalvingRate,
		JoiningStart:    r.JoiningStart,
		JoiningEnd:      r.JoiningEnd,
		SaleyardVenue:   r.SaleyardVenue,
		Notes:           r.Notes,
	}
	if r.ReferenceDate != nil {
		in.ReferenceDate = *r.ReferenceDate
	}
	return in
}

type sellGroupRequest struct {
	SoldAt     *time.Time      `json:"soldAt"`
	PricePerKg decimal.Decimal `json:"pricePerKg"`
}

// CreateGroup registers a new mob.
func (h *HerdHandler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create group payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}

	group, err := h.svc.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.logger.Warn("create group rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, group)
}

// UpdateGroup replaces an existing mob's details.
func (h *HerdHandler) UpdateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update group payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}

	group, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, mongodb.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		case errors.Is(err, herd.ErrAlreadySold):
			c.JSON(http.StatusConflict, gin.H{"error": "group already sold"})
		default:
			h.logger.Warn("update group rejected", zap.String("group_id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, group)
}

// ListGroups returns the herd, active mobs only unless includeSold is set.
func (h *HerdHandler) ListGroups(c *gin.Context) {
	includeSold := false
	if raw := c.Query("includeSold"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "includeSold must be a boolean"})
			return
		}
		includeSold = parsed
	}

	groups, err := h.svc.List(c.Request.Context(), includeSold)
	if err != nil {
		h.logger.Error("list groups failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetGroup returns a single mob by id.
func (h *HerdHandler) GetGroup(c *gin.Context) {
	group, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
		h.logger.Error("get group failed", zap.String("group_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load group"})
		return
	}

	c.JSON(http.StatusOK, group)
}

// GetValuation values a single mob, optionally at a historical date given by
// the asOf query (yyyy-mm-dd or RFC 3339).
func (h *HerdHandler) GetValuation(c *gin.Context) {
	var asOf *time.Time
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be yyyy-mm-dd or RFC 3339"})
			return
		}
		asOf = &parsed
	}

	result, err := h.svc.Valuation(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
		h.logger.Error("group valuation failed", zap.String("group_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to value group"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SellGroup records a sale and retires the mob from active valuation.
func (h *HerdHandler) SellGroup(c *gin.Context) {
	var req sellGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sale payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}

	group, err := h.svc.Sell(c.Request.Context(), c.Param("id"), req.SoldAt, req.PricePerKg)
	if err != nil {
		switch {
		case errors.Is(err, mongodb.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		case errors.Is(err, herd.ErrAlreadySold):
			c.JSON(http.StatusConflict, gin.H{"error": "group already sold"})
		default:
			h.logger.Error("sell group failed", zap.String("group_id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record sale"})
		}
		return
	}

	c.JSON(http.StatusOK, group)
}

// parseDateParam accepts a bare date or a full timestamp.
func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
