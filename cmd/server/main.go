package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/soccer-rsvp/app/internal/config"
	"github.com/soccer-rsvp/app/internal/database"
	"github.com/soccer-rsvp/app/internal/handlers"
	"github.com/soccer-rsvp/app/internal/importer"
	appLog "github.com/soccer-rsvp/app/internal/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	listen := flag.String("listen", "", "HTTP listen address (overrides config if set)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", *configPath)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	appLog.Info("effective config",
		"listen", cfg.Listen,
		"database", cfg.Database,
		"feed_configured", cfg.FeedURL != "",
		"refresh", cfg.RefreshCron,
		"min_players", cfg.MinPlayers,
		"ideal_players", cfg.IdealPlayers,
	)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		appLog.Error("failed to initialize database", err, "database", cfg.Database)
		os.Exit(1)
	}
	defer db.Close()

	if err := handlers.LoadTemplates("web/templates"); err != nil {
		appLog.Error("failed to load templates", err)
		os.Exit(1)
	}

	// Root context, canceled on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	fetcher := importer.NewFetcher(cfg.FeedURL, cfg.CacheFile, cfg.CacheMaxAge())
	imp := importer.New(db, fetcher)

	var scheduler *cron.Cron
	if cfg.FeedURL != "" {
		// Import once at startup; a failure here is not fatal, the
		// previously imported games still serve.
		go func() {
			if _, err := imp.Run(ctx); err != nil {
				appLog.Error("startup calendar import failed", err)
			}
		}()

		if cfg.RefreshCron != "" {
			scheduler = cron.New()
			_, err := scheduler.AddFunc(cfg.RefreshCron, func() {
				if _, err := imp.Run(ctx); err != nil {
					appLog.Error("scheduled calendar import failed", err)
				}
			})
			if err != nil {
				appLog.Error("invalid refresh schedule", err, "refresh", cfg.RefreshCron)
				os.Exit(1)
			}
			scheduler.Start()
		}
	} else {
		appLog.Info("no feed_url configured; calendar import disabled")
	}

	mux := newMux(db, imp, cfg)

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		if scheduler != nil {
			scheduler.Stop()
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLog.Error("server shutdown failed", err)
		}
	}()

	appLog.Info("server starting", "listen", cfg.Listen)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("server error", err)
		os.Exit(1)
	}
	appLog.Info("server exiting")
}

func newMux(db *sql.DB, imp *importer.Importer, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Static File Server
	fs := http.FileServer(http.Dir("web/static"))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))

	// Root Handler
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/games", http.StatusSeeOther)
		} else {
			handlers.RenderErrorPage(w, r, db, http.StatusNotFound, "Page Not Found", "The page you are looking for does not exist.")
		}
	})

	// Authentication Routes
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.LoginPage(w, r)
		case http.MethodPost:
			handlers.Login(db)(w, r)
		default:
			handlers.RenderErrorPage(w, r, db, http.StatusMethodNotAllowed, "Method Not Allowed", "This method is not supported for /login.")
		}
	})

	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			handlers.Logout(w, r)
		} else {
			handlers.RenderErrorPage(w, r, db, http.StatusMethodNotAllowed, "Method Not Allowed", "Logout requires POST method.")
		}
	})

	// Game Routes
	mux.HandleFunc("/games", handlers.GamesListPage(db, cfg.MinPlayers, cfg.IdealPlayers))
	mux.HandleFunc("/history", handlers.HistoryPage(db, cfg.MinPlayers, cfg.IdealPlayers))
	mux.HandleFunc("/my", handlers.AuthMiddleware(handlers.MyRSVPsPage(db)))

	// Calendar refresh (manual trigger)
	mux.HandleFunc("/calendar/refresh", handlers.AuthMiddleware(handlers.RefreshCalendar(db, imp)))

	// Dynamic Game Path Router: catches /games/{id} and /games/{id}/rsvp
	mux.HandleFunc("/games/", routeDynamicGamePaths(db, cfg))

	return mux
}

func routeDynamicGamePaths(db *sql.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/games/"), "/")

		if len(parts) == 0 || parts[0] == "" {
			handlers.RenderErrorPage(w, r, db, http.StatusNotFound, "Not Found", "Game ID missing or invalid path.")
			return
		}

		if _, err := strconv.ParseInt(parts[0], 10, 64); err != nil {
			handlers.RenderErrorPage(w, r, db, http.StatusBadRequest, "Bad Request", "Invalid Game ID format.")
			return
		}

		switch {
		case len(parts) == 1: // /games/{id}
			if r.Method == http.MethodGet {
				handlers.GameDetailPage(db, cfg.MinPlayers, cfg.IdealPlayers)(w, r)
			} else {
				handlers.RenderErrorPage(w, r, db, http.StatusMethodNotAllowed, "Method Not Allowed", "Only GET is allowed for game details.")
			}
		case len(parts) == 2 && parts[1] == "rsvp": // /games/{id}/rsvp
			if r.Method == http.MethodPost {
				handlers.AuthMiddleware(handlers.SubmitRSVP(db))(w, r)
			} else {
				handlers.RenderErrorPage(w, r, db, http.StatusMethodNotAllowed, "Method Not Allowed", "Only POST is allowed for RSVP.")
			}
		default:
			handlers.RenderErrorPage(w, r, db, http.StatusNotFound, "Not Found", "Invalid game path structure.")
		}
	}
}
