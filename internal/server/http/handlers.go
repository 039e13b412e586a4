package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/brianly1003/observe/internal/domain"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// PropertyResponse is the body of GET /api/properties/{id}.
type PropertyResponse struct {
	ID          string `json:"id"`
	Value       any    `json:"value"`
	Subscribers int    `json:"subscribers"`
}

// SetPropertyRequest is the body of PUT /api/properties/{id}.
type SetPropertyRequest struct {
	Value any `json:"value"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Subscribers       int            `json:"subscribers"`
	ObjectSubscribers int            `json:"object_subscribers"`
	Properties        map[string]int `json:"properties"`
	Clients           int            `json:"clients"`
	UptimeSeconds     int64          `json:"uptime_seconds"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   "observe",
		"timestamp": time.Now().Unix(),
	})
}

// handleListProperties handles GET /api/properties
func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"properties": s.store.Properties(),
		"values":     s.store.Snapshot(),
	})
}

// handleGetProperty handles GET /api/properties/{id}
func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	value, err := s.store.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	pub, err := s.store.PublisherFor(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PropertyResponse{
		ID:          id,
		Value:       value,
		Subscribers: pub.SubscriberCount(),
	})
}

// handleSetProperty handles PUT /api/properties/{id}
func (s *Server) handleSetProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req SetPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidPayload, "request body must be {\"value\": ...}")
		return
	}

	if err := s.store.Set(id, req.Value); err != nil {
		respondDomainError(w, err)
		return
	}

	resp := PropertyResponse{ID: id, Value: req.Value}
	if pub, err := s.store.PublisherFor(id); err == nil {
		resp.Subscribers = pub.SubscriberCount()
	}

	log.Debug().Str("property", id).Msg("property set via API")
	respondJSON(w, http.StatusOK, resp)
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := StatsResponse{
		Subscribers:       s.store.SubscriberCount(),
		ObjectSubscribers: s.store.WillChange().SubscriberCount(),
		Properties:        make(map[string]int),
		UptimeSeconds:     int64(time.Since(s.startTime).Seconds()),
	}
	for _, id := range s.store.Properties() {
		if pub, err := s.store.PublisherFor(id); err == nil {
			stats.Properties[id] = pub.SubscriberCount()
		}
	}
	if s.opts.Clients != nil {
		stats.Clients = s.opts.Clients.ClientCount()
	}

	respondJSON(w, http.StatusOK, stats)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func respondDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrPropertyNotRegistered) {
		respondError(w, http.StatusNotFound, domain.ErrCodePropertyNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, domain.ErrCodeInternalError, err.Error())
}
