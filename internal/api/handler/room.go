package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/carriee-liuu/anomia-go/internal/api/apierr"
	"github.com/carriee-liuu/anomia-go/internal/api/request"
	"github.com/carriee-liuu/anomia-go/internal/api/response"
	"github.com/carriee-liuu/anomia-go/internal/model"
	"github.com/carriee-liuu/anomia-go/internal/services/room"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	rooms *room.Controller
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *room.Controller) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Create handles POST /api/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	hostName := strings.TrimSpace(req.HostName)
	if hostName == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("hostName is required"))
		return
	}

	result, err := h.rooms.CreateRoom(r.Context(), hostName)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateRoomResponse{
		Room:         response.RoomFromModel(result.Room),
		Player:       response.PlayerFromModel(&result.Player),
		SessionToken: result.SessionToken,
	})
}

// Get handles GET /api/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(strings.ToUpper(mux.Vars(r)["code"]))

	rm, err := h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GetRoomResponse{Room: response.RoomFromModel(rm)})
}
