package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"i4.energy/across/cellgw/modem"
)

// Server handles incoming HTTP requests for interacting with the
// configured modem instance
type Server struct {
	Logger  *slog.Logger
	Gateway *Gateway
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sms", s.handleSMS)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// handleSMS processes incoming HTTP POST requests to send SMS messages
func (s *Server) handleSMS(w http.ResponseWriter, r *http.Request) {
	type SMSRequest struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}

	var req SMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.To == "" || req.Message == "" {
		s.sendError(w, "both 'to' and 'message' fields are required", http.StatusBadRequest)
		return
	}

	err := s.Gateway.Do(r.Context(), func(m *modem.Modem) error {
		return m.SendSMS(req.To, req.Message)
	})
	if err != nil {
		s.Logger.Error("Failed to send SMS", "error", err, "to", req.To)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Logger.Info("SMS sent successfully", "to", req.To, "message_length", len(req.Message))
	w.WriteHeader(http.StatusOK)
}

// handleStatus reports signal quality, network registration and the
// selected operator as JSON
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type StatusResponse struct {
		RSSI         int    `json:"rssi"`
		BitErrorRate int    `json:"bit_error_rate"`
		Registration int    `json:"registration"`
		Operator     string `json:"operator"`
	}

	var status StatusResponse
	err := s.Gateway.Do(r.Context(), func(m *modem.Modem) error {
		var err error
		if status.RSSI, status.BitErrorRate, err = m.SignalQuality(); err != nil {
			return err
		}
		if status.Registration, err = m.RegistrationStatus(); err != nil {
			return err
		}
		status.Operator, err = m.Operator()
		return err
	})
	if err != nil {
		s.Logger.Error("Failed to query modem status", "error", err)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
