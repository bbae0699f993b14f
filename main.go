// KALI club backend: REST API for membership applications, team roster,
// project showcase, blog, and contact form.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/kaliweb-go/applications"
	"github.com/user/kaliweb-go/auth"
	"github.com/user/kaliweb-go/background"
	"github.com/user/kaliweb-go/blogs"
	"github.com/user/kaliweb-go/config"
	"github.com/user/kaliweb-go/contact"
	"github.com/user/kaliweb-go/db"
	_ "github.com/user/kaliweb-go/docs"
	"github.com/user/kaliweb-go/events"
	"github.com/user/kaliweb-go/logging"
	"github.com/user/kaliweb-go/projects"
	"github.com/user/kaliweb-go/team"
)

// requestTimeout bounds ordinary API requests. The event stream is
// mounted outside of it because it stays open until the client
// disconnects.
const requestTimeout = 60 * time.Second

// @title KALI Club API
// @version 1.0
// @description REST API for the KALI student club: membership applications, team, projects, blog, and contact form.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logging.NewDefault()
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Warn(ctx, ".env file not loaded", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Error(ctx, "failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "migrations"); err != nil {
		log.Error(ctx, "failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Services and handlers. The application store doubles as the
	// registration gate so accepted applicants can create accounts.
	broadcaster := events.NewBroadcaster()
	eventHandlers := events.NewHandler(broadcaster, log)

	applicationStore := applications.NewPgxStore(pool)
	applicationService := applications.NewService(applicationStore, broadcaster, log)
	applicationHandlers := applications.NewHandlers(applicationService)

	userStore := auth.NewPgxUserStore(pool)
	authService := auth.NewService(userStore, applicationStore, *cfg.Auth, log)
	authHandlers := auth.NewHandlers(authService)
	authMiddleware := auth.NewMiddleware(authService, log)

	teamService := team.NewService(pool, log)
	teamHandlers := team.NewHandlers(teamService)

	projectService := projects.NewService(pool, log)
	projectHandlers := projects.NewHandlers(projectService)

	blogService := blogs.NewService(pool, log)
	blogHandlers := blogs.NewHandlers(blogService)

	contactService := contact.NewService(pool, log)
	contactHandlers := contact.NewHandlers(contactService)

	sweeperStop := make(chan struct{})
	sweeperWG := background.StartRetentionSweeper(contactService, *cfg.Retention, log, sweeperStop)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Ordinary routes run under the request timeout. The application
	// event stream is registered further down, outside this group, so
	// the timeout never cancels an open stream.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))

		r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
			if err := db.Health(r.Context(), pool); err != nil {
				auth.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "error", "message": "database unreachable",
				})
				return
			}
			auth.WriteSuccess(w, http.StatusOK, map[string]string{"database": "up"}, "")
		})

		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/login", authHandlers.HandleLogin())
			r.Post("/register", authHandlers.HandleRegister())

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/me", authHandlers.HandleGetMe())
				r.Put("/me", authHandlers.HandleUpdateMe())
			})
		})

		r.Route("/api/team", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.OptionalAuthenticate)
				r.Get("/", teamHandlers.HandleList())
				r.Get("/{id}", teamHandlers.HandleGet())
			})
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)
				r.Post("/", teamHandlers.HandleCreate())
				r.Put("/{id}", teamHandlers.HandleUpdate())
				r.Delete("/{id}", teamHandlers.HandleDelete())
			})
		})

		r.Route("/api/projects", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.OptionalAuthenticate)
				r.Get("/", projectHandlers.HandleList())
				r.Get("/{idOrSlug}", projectHandlers.HandleGet())
			})
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/", projectHandlers.HandleCreate())
				r.Put("/{id}", projectHandlers.HandleUpdate())
				r.Delete("/{id}", projectHandlers.HandleDelete())
			})
		})

		r.Route("/api/blogs", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.OptionalAuthenticate)
				r.Get("/", blogHandlers.HandleList())
				r.Get("/meta/{kind}", blogHandlers.HandleMeta())
				r.Get("/{slug}", blogHandlers.HandleGetBySlug())
				r.Post("/{slug}/like", blogHandlers.HandleLike())
			})
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/", blogHandlers.HandleCreate())
				r.Put("/{id}", blogHandlers.HandleUpdate())
				r.Delete("/{id}", blogHandlers.HandleDelete())
			})
		})

		r.Route("/api/contact", func(r chi.Router) {
			r.Post("/", contactHandlers.HandleSubmit())
			r.Get("/info", contactHandlers.HandleInfo())

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)
				r.Get("/submissions", contactHandlers.HandleList())
				r.Get("/submissions/{id}", contactHandlers.HandleGet())
				r.Put("/submissions/{id}", contactHandlers.HandleUpdate())
				r.Delete("/submissions/{id}", contactHandlers.HandleDelete())
			})
		})
	})

	r.Route("/api/applications", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Post("/", applicationHandlers.HandleSubmit())

			// Review operations are admin-only.
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)
				r.Get("/", applicationHandlers.HandleList())
				r.Get("/stats/overview", applicationHandlers.HandleStats())
				r.Get("/{id}", applicationHandlers.HandleGet())
				r.Put("/{id}", applicationHandlers.HandleUpdate())
				r.Patch("/{id}/accept", applicationHandlers.HandleAccept())
				r.Patch("/{id}/deny", applicationHandlers.HandleDeny())
				r.Delete("/{id}", applicationHandlers.HandleDelete())
			})
		})

		// The stream delivers events until the client disconnects, so
		// the request timeout must not cover it.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)
			r.Get("/events", eventHandlers.HandleStream)
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
		log.Info(ctx, "server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	close(sweeperStop)
	sweeperWG.Wait()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info(ctx, "server stopped")
}
