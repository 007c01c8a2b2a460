package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/carriee-liuu/anomia-go/internal/api/handler"
	"github.com/carriee-liuu/anomia-go/internal/api/middleware"
	"github.com/carriee-liuu/anomia-go/internal/api/response"
	"github.com/carriee-liuu/anomia-go/internal/model"
	"github.com/carriee-liuu/anomia-go/internal/services/room"
	"github.com/carriee-liuu/anomia-go/internal/ws"

	basemiddleware "github.com/carriee-liuu/anomia-go/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	RoomController *room.Controller
	GameHandler    *ws.GameHandler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.RoomController)

	loggingMiddleware := basemiddleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)

	// The realtime channel shares the room path but hands the connection
	// off to the websocket hub after the upgrade
	api.HandleFunc("/rooms/{code}/ws", func(w http.ResponseWriter, req *http.Request) {
		code := model.RoomCode(strings.ToUpper(mux.Vars(req)["code"]))
		ws.ServeWS(w, req, code, cfg.GameHandler, cfg.Logger)
	}).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
