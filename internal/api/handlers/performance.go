package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/zinye/prm/backend/internal/contracts"
	"github.com/zinye/prm/backend/internal/partner"
	"github.com/zinye/prm/backend/pkg/logger"
)

// PerformanceHandler handles partner performance API endpoints
type PerformanceHandler struct {
	engine      contracts.Engine
	partnerRepo contracts.PartnerRepository
	logger      *logger.Logger
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(engine contracts.Engine, partnerRepo contracts.PartnerRepository, log *logger.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		engine:      engine,
		partnerRepo: partnerRepo,
		logger:      log,
	}
}

// GetPerformance returns a partner's performance snapshot
// GET /api/partners/{id}/performance?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *PerformanceHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partnerID := mux.Vars(r)["id"]

	period, err := parsePeriod(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.engine.GetPartnerPerformance(ctx, partnerID, period)
	if err != nil {
		h.respondEngineError(w, partnerID, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// RecalculateScore runs the full pipeline and persists the score fields
// POST /api/partners/{id}/score/recalculate
func (h *PerformanceHandler) RecalculateScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partnerID := mux.Vars(r)["id"]

	score, err := h.engine.RecalculatePartnerScore(ctx, partnerID)
	if err != nil {
		h.respondEngineError(w, partnerID, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"partner_id":    partnerID,
		"partner_score": score,
	})
}

// GetCommission quotes the partner's commission for a deal value
// GET /api/partners/{id}/commission?deal_value=N
func (h *PerformanceHandler) GetCommission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partnerID := mux.Vars(r)["id"]

	dealValue, err := strconv.ParseFloat(r.URL.Query().Get("deal_value"), 64)
	if err != nil || dealValue < 0 {
		respondError(w, http.StatusBadRequest, "deal_value must be a non-negative number")
		return
	}

	p, err := h.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		h.respondEngineError(w, partnerID, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"partner_id":      partnerID,
		"deal_value":      dealValue,
		"commission_rate": p.CommissionRate,
		"commission":      partner.Commission(p, dealValue),
	})
}

// respondEngineError maps engine errors onto HTTP statuses
func (h *PerformanceHandler) respondEngineError(w http.ResponseWriter, partnerID string, err error) {
	switch {
	case errors.Is(err, contracts.ErrPartnerNotFound):
		respondError(w, http.StatusNotFound, "Partner not found")
	case errors.Is(err, contracts.ErrInvalidPeriod):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contracts.ErrActivityUnavailable):
		h.logger.WithError(err).WithField("partner_id", partnerID).Error("Activity store unavailable")
		respondError(w, http.StatusServiceUnavailable, "Activity data temporarily unavailable")
	default:
		h.logger.WithError(err).WithField("partner_id", partnerID).Error("Performance request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parsePeriod builds an optional period range from query parameters.
// Both bounds must be given together; a lone bound is rejected.
func parsePeriod(fromStr, toStr string) (*contracts.PeriodRange, error) {
	if fromStr == "" && toStr == "" {
		return nil, nil
	}
	if fromStr == "" || toStr == "" {
		return nil, errors.New("from and to must be provided together")
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return nil, errors.New("invalid 'from' date format (expected YYYY-MM-DD)")
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return nil, errors.New("invalid 'to' date format (expected YYYY-MM-DD)")
	}

	return &contracts.PeriodRange{From: from, To: to}, nil
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
