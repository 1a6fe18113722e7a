package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"spyfall/internal/app"
	"spyfall/internal/domain"
	"spyfall/internal/transport/ws"
)

const qrSize = 256

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateRoomRequest is the body of POST /api/rooms
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// CreateRoomResponse is the response for room creation
type CreateRoomResponse struct {
	RoomCode   string `json:"roomCode"`
	Host       string `json:"host"`
	InviteLink string `json:"inviteLink"`
}

// GetRoomResponse is the response for getting room info
type GetRoomResponse struct {
	app.RoomSummary
	CanJoin bool `json:"canJoin"`
}

// RoomExistsResponse is the response for checking if room exists
type RoomExistsResponse struct {
	Exists bool `json:"exists"`
}

// LocationsResponse lists the playable locations, in guessing order
type LocationsResponse struct {
	Locations []string `json:"locations"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveRooms   int                  `json:"activeRooms"`
	TotalPlayers  int                  `json:"totalPlayers"`
	OnlinePlayers int                  `json:"onlinePlayers"`
	RoomsByPhase  map[domain.Phase]int `json:"roomsByPhase"`
}

// handleCreateRoom handles POST /api/rooms
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, ws.ErrCodeInvalidMessage, "Invalid request body")
		return
	}

	session, err := s.hub.CreateRoom(req.Name)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccessStatus(w, http.StatusCreated, &CreateRoomResponse{
		RoomCode:   session.GetRoomCode(),
		Host:       session.GetHost(),
		InviteLink: s.inviteLink(r, session.GetRoomCode()),
	})
}

// handleGetRoom handles GET /api/rooms/{roomCode}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	summary := session.Summary()
	s.sendSuccess(w, &GetRoomResponse{
		RoomSummary: summary,
		CanJoin:     summary.Status == domain.PhaseLobby,
	})
}

// handleRoomExists handles GET /api/rooms/{roomCode}/exists
func (s *Server) handleRoomExists(w http.ResponseWriter, r *http.Request) {
	_, err := s.hub.GetSession(chi.URLParam(r, "roomCode"))
	s.sendSuccess(w, &RoomExistsResponse{
		Exists: err == nil,
	})
}

// handleRoomQR handles GET /api/rooms/{roomCode}/qr with a PNG of the invite link
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	png, err := qrcode.Encode(s.inviteLink(r, session.GetRoomCode()), qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("failed to encode invite qr", "roomCode", session.GetRoomCode(), "error", err)
		s.sendError(w, http.StatusInternalServerError, ws.ErrCodeInternalError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

// handleLocations handles GET /api/locations
func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &LocationsResponse{
		Locations: s.catalog.Names(),
	})
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := &HealthResponse{Status: "ok"}
	for name, checker := range s.checks {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(s.checks))
		}
		if err := checker.Ping(ctx); err != nil {
			s.logger.Error("health check failed", "name", name, "error", err)
			resp.Checks[name] = "error"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	s.sendSuccessStatus(w, status, resp)
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveRooms:   s.hub.GetSessionCount(),
		TotalPlayers:  s.hub.GetTotalPlayerCount(),
		OnlinePlayers: s.hub.GetOnlinePlayerCount(),
		RoomsByPhase:  s.hub.GetPhaseCounts(),
	})
}

// lookup resolves the {roomCode} path parameter, writing a 404 when absent
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*app.RoomSession, bool) {
	session, err := s.hub.GetSession(chi.URLParam(r, "roomCode"))
	if err != nil {
		s.sendDomainError(w, err)
		return nil, false
	}
	return session, true
}

// inviteLink builds the join link for a room
func (s *Server) inviteLink(r *http.Request, roomCode string) string {
	base := strings.TrimSuffix(s.config.Server.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/join/" + roomCode
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	s.sendSuccessStatus(w, http.StatusOK, data)
}

func (s *Server) sendSuccessStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendDomainError maps a domain error to a status and error code
func (s *Server) sendDomainError(w http.ResponseWriter, err error) {
	p := ws.DescribeError(err)

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrGameAlreadyStarted):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRoomCodeExhausted):
		status = http.StatusServiceUnavailable
	case p.Code == ws.ErrCodeInternalError:
		s.logger.Error("unexpected error", "error", err)
		status = http.StatusInternalServerError
	}

	s.sendError(w, status, p.Code, p.Message)
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
