package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/smartslip/internal/analysis"
	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/odds"
)

// maxSlipLegs bounds a single request
const maxSlipLegs = 25

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AnalyzeRequest is the body of both analysis endpoints
type AnalyzeRequest struct {
	Legs []models.LegRequest `json:"legs" validate:"required,min=1,dive"`
}

// LegsResponse is the body of a successful legs analysis
type LegsResponse struct {
	Results []analysis.LegResult `json:"results"`
	Count   int                  `json:"count"`
}

// ConvertRequest asks for a price in every format
type ConvertRequest struct {
	Price  string            `json:"price" validate:"required"`
	Format models.OddsFormat `json:"format,omitempty" validate:"omitempty,oneof=american decimal fractional"`
}

func (s *Server) handleAnalyzeLegs(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	results := s.cfg.Analyzer.AnalyzeLegs(r.Context(), req.Legs)
	respondJSON(w, http.StatusOK, LegsResponse{Results: results, Count: len(results)})
}

func (s *Server) handleAnalyzeParlay(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	result, err := s.cfg.Analyzer.AnalyzeParlay(r.Context(), req.Legs)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, result)
	case errors.Is(err, models.ErrNoLegs):
		s.respondError(w, http.StatusBadRequest, err.Error(), nil)
	case models.IsInvalidOdds(err), errors.Is(err, models.ErrInvalidProbability):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		s.respondError(w, http.StatusInternalServerError, "failed to analyze parlay", err)
	}
}

func (s *Server) handleConvertOdds(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, validationMessage(err), nil)
		return
	}

	resp, err := odds.Convert(req.Price, req.Format)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearPriors(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Cache == nil {
		s.respondError(w, http.StatusNotFound, "prior cache is not configured", nil)
		return
	}
	if err := s.cfg.Cache.Clear(r.Context()); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to clear prior cache", err)
		return
	}
	s.logger.Info("Prior cache cleared on request")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (*AnalyzeRequest, bool) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return nil, false
	}
	if len(req.Legs) > maxSlipLegs {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d legs per request", maxSlipLegs), nil)
		return nil, false
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, validationMessage(err), nil)
		return nil, false
	}
	return &req, true
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err.Error()
	}
	fe := validationErrors[0]
	return fmt.Sprintf("field '%s' failed validation: %s", fe.Namespace(), fe.Tag())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		s.logger.WithError(err).WithField("status", status).Warn(message)
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
