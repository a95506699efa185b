package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/atkinsj/dumpbin/internal/api/handlers"
	"github.com/atkinsj/dumpbin/internal/auth"
	"github.com/atkinsj/dumpbin/internal/services"
	"github.com/atkinsj/dumpbin/internal/websocket"
)

// RouterDeps carries everything the router wires into handlers.
type RouterDeps struct {
	Hub          *websocket.Hub
	Gate         *auth.Gate
	Codec        *auth.Codec
	DumpService  services.DumpServiceProvider
	UserService  services.UserServiceProvider
	EventService services.EventServiceProvider
	CORSOrigin   string
	SessionDays  int
	RememberDays int
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	dumpHandler := handlers.NewDumpHandler(deps.DumpService, deps.Gate)
	userHandler := handlers.NewUserHandler(deps.UserService, deps.Gate, deps.Codec, deps.SessionDays, deps.RememberDays)
	uploadHandler := handlers.NewUploadHandler(deps.UserService, deps.Gate)
	eventHandler := handlers.NewEventHandler(deps.EventService, deps.Gate)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub)

	r.Route("/api", func(r chi.Router) {
		// Live activity feed
		r.Get("/ws", wsHandler.Serve)

		r.Route("/dumps", func(r chi.Router) {
			r.Get("/view/{id}", dumpHandler.View)
			r.Post("/add", dumpHandler.Add)
			r.Post("/update", dumpHandler.Update)
			r.Delete("/delete", dumpHandler.Delete)
			r.Get("/recent", dumpHandler.Recent)
			r.Get("/user", dumpHandler.UserDumps)
			r.Get("/range", dumpHandler.Range)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/add", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Get("/exists/{username}", userHandler.Exists)
			r.Get("/profile", userHandler.Profile)
			r.Get("/myprofile", userHandler.MyProfile)
			r.Get("/username", userHandler.Username)
			r.Get("/avatar/{username}.png", userHandler.Avatar)
		})

		r.Route("/upload", func(r chi.Router) {
			r.Post("/profile", uploadHandler.Profile)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/recent", eventHandler.GetRecent)
		})
	})

	return r
}
