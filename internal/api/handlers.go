package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jorgehenrrique/next-chat-server/internal/crypto"
	"github.com/jorgehenrrique/next-chat-server/internal/registry"
	"github.com/jorgehenrrique/next-chat-server/internal/store"
)

const version = "1.0.0"

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store     *store.RoomStore
	reg       *registry.Registry
	adminHash string // decoded bcrypt hash, empty when not configured
	logger    zerolog.Logger
}

// NewHandler creates a Handler. adminHash is the already-decoded admin
// password hash, or empty when admin auth is disabled.
func NewHandler(st *store.RoomStore, reg *registry.Registry, adminHash string, logger zerolog.Logger) *Handler {
	return &Handler{store: st, reg: reg, adminHash: adminHash, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Connections  int    `json:"connections"`
	PublicRooms  int    `json:"publicRooms"`
	PrivateRooms int    `json:"privateRooms"`
	Timestamp    string `json:"timestamp"`
}

// Health handles the health check endpoint. All state is in-memory, so the
// check reports counts rather than dependency probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	public, private := h.store.Counts()
	h.JSON(w, http.StatusOK, HealthResponse{
		Status:       "healthy",
		Version:      version,
		Connections:  h.reg.Count(),
		PublicRooms:  public,
		PrivateRooms: private,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

// AdminAuthRequest is the admin login request.
type AdminAuthRequest struct {
	Password string `json:"password"`
}

// AdminAuthResponse is the successful admin login response. The token is the
// stored hash itself, matching the original front end's expectations.
type AdminAuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// AdminAuth checks the admin password against the configured hash and
// returns the opaque admin token on success.
func (h *Handler) AdminAuth(w http.ResponseWriter, r *http.Request) {
	if h.adminHash == "" {
		h.Error(w, http.StatusInternalServerError, "admin auth not configured")
		return
	}

	var req AdminAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !crypto.CheckAdminPassword(req.Password, h.adminHash) {
		h.Error(w, http.StatusUnauthorized, "incorrect admin password")
		return
	}

	h.JSON(w, http.StatusOK, AdminAuthResponse{Success: true, Token: h.adminHash})
}
