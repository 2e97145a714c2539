// Entry point of the stadium tickets service. Initializes configuration,
// the database pool, services and handlers, sets up the chi router with
// the authentication pipeline, and runs the HTTP server with graceful
// shutdown.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/user/stadium-tickets-go/auth"
	"github.com/user/stadium-tickets-go/config"
	"github.com/user/stadium-tickets-go/db"
	"github.com/user/stadium-tickets-go/matches"
	"github.com/user/stadium-tickets-go/stadiums"
	"github.com/user/stadium-tickets-go/tickets"
	"github.com/user/stadium-tickets-go/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// The token codec holds the signing secret for the process lifetime.
	// A missing secret is fatal here, before the server ever listens.
	codec, err := auth.NewTokenCodec(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize token codec: %v", err)
	}

	authService := auth.NewAuthService(pool, codec)
	authHandlers := auth.NewHandlers(authService)
	authenticator := auth.NewAuthenticator(codec, authService)

	userService := users.NewUserService(pool)
	userHandlers := users.NewUserHandlers(userService)

	stadiumService := stadiums.NewService(pool)
	stadiumHandlers := stadiums.NewHandlers(stadiumService)

	matchService := matches.NewService(pool)
	matchHandlers := matches.NewHandlers(matchService)

	ticketService := tickets.NewService(tickets.NewPostgresStore(pool))
	ticketHandlers := tickets.NewHandlers(ticketService)

	r := chi.NewRouter()

	// Global middleware. The authenticator runs on every request and
	// attaches an identity when a valid bearer token is presented; routes
	// that need one enforce it with the gate middlewares below.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(authenticator.Middleware())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/login/passwordless", authHandlers.HandlePasswordlessLogin())
		r.Post("/register", authHandlers.HandleRegister())
	})

	r.Route("/api/users", func(r chi.Router) {
		r.With(auth.RequireAuthenticated).Get("/me", userHandlers.HandleGetCurrentUser())
		r.With(auth.RequireRole(auth.RoleAdmin)).Get("/", userHandlers.HandleGetAllUsers())
	})

	r.Route("/api/stadiums", func(r chi.Router) {
		r.Get("/", stadiumHandlers.HandleGetAll())
		r.Get("/{id}", stadiumHandlers.HandleGetByID())

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Post("/", stadiumHandlers.HandleCreate())
			r.Put("/{id}", stadiumHandlers.HandleUpdate())
			r.Delete("/{id}", stadiumHandlers.HandleDelete())
		})
	})

	r.Route("/api/matches", func(r chi.Router) {
		r.Get("/", matchHandlers.HandleGetAll())
		r.Get("/{id}", matchHandlers.HandleGetByID())
		r.Get("/stadium/{stadiumID}", matchHandlers.HandleByStadium())

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Post("/", matchHandlers.HandleCreate())
			r.Put("/{id}", matchHandlers.HandleUpdate())
			r.Delete("/{id}", matchHandlers.HandleDelete())
			r.Post("/{matchID}/tickets", ticketHandlers.HandleRegisterSeat())
		})
	})

	r.Route("/api/tickets", func(r chi.Router) {
		r.Get("/", ticketHandlers.HandleGetAll())
		r.Get("/{id}", ticketHandlers.HandleGetByID())
		r.Get("/status/{status}", ticketHandlers.HandleByStatus())
		r.Get("/match/{matchID}", ticketHandlers.HandleByMatch())
		r.Get("/match/{matchID}/count", ticketHandlers.HandleCountByMatch())
		r.Get("/match/{matchID}/seat", ticketHandlers.HandleBySeat())

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuthenticated)
			r.Post("/", ticketHandlers.HandlePurchase())
			r.Delete("/{id}", ticketHandlers.HandleCancel())
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Put("/{id}", ticketHandlers.HandleUpdateSeat())
			r.Delete("/{id}/permanent", ticketHandlers.HandleDelete())
		})
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}
