package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/calebmah/streamchat/internal/config"
	"github.com/calebmah/streamchat/internal/connections"
	"github.com/calebmah/streamchat/internal/handlers"
	"github.com/calebmah/streamchat/internal/middleware"
	"github.com/calebmah/streamchat/internal/services"
	"github.com/calebmah/streamchat/pkg/ratelimit"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogging()

	svc := services.InitializeServices()
	r := setupRouter(svc)

	addr := config.GetServerAddr()
	log.Info().Str("addr", addr).Msg("Server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("ListenAndServe error")
	}
}

func setupLogging() {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetEnvOrDefault("LOG_LEVEL", "info")))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func setupRouter(svc *services.Services) *mux.Router {
	chatService := svc.GetChatService()
	sessionService := svc.GetSessionService()
	preferenceService := svc.GetPreferenceService()

	manager := connections.NewManager(connections.DefaultTimeouts)
	loginLimiter := ratelimit.NewLimiter(time.Minute, 5)

	r := mux.NewRouter()
	r.Use(middleware.Gate(sessionService))

	r.HandleFunc("/api/login", func(w http.ResponseWriter, req *http.Request) {
		handlers.HandleLogin(sessionService, loginLimiter, w, req)
	}).Methods("POST")

	r.HandleFunc("/api/logout", func(w http.ResponseWriter, req *http.Request) {
		handlers.HandleLogout(sessionService, w, req)
	}).Methods("POST")

	r.HandleFunc("/api/chat", func(w http.ResponseWriter, req *http.Request) {
		handlers.HandleChatCompletion(chatService, w, req)
	}).Methods("POST")

	r.HandleFunc("/api/model", func(w http.ResponseWriter, req *http.Request) {
		handlers.HandleGetModel(preferenceService, chatService, w, req)
	}).Methods("GET")

	r.HandleFunc("/api/model", func(w http.ResponseWriter, req *http.Request) {
		handlers.HandleSetModel(preferenceService, w, req)
	}).Methods("PUT")

	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		handlers.HandleWebSocket(chatService, manager, w, req)
	})

	r.HandleFunc("/chat", handlers.HandleChatPage).Methods("GET")
	r.HandleFunc("/login", handlers.HandleLoginPage).Methods("GET")
	r.HandleFunc("/", handlers.HandleIndex).Methods("GET")

	return r
}
