// Command gpr-admin serves the debug pages of a survey database: a
// tailsql console, on-demand backups and recent clustering runs.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/gpr.report/internal/db"
	"github.com/banshee-data/gpr.report/internal/version"
)

var (
	dbPath = flag.String("db", "gpr_survey.db", "Path to the survey database")
	listen = flag.String("listen", "localhost:8081", "Listen address")
)

// newHandler mounts the admin routes of database on a fresh mux.
func newHandler(database *db.DB) (http.Handler, error) {
	mux := http.NewServeMux()
	if err := database.AttachAdminRoutes(mux); err != nil {
		return nil, err
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/debug/", http.StatusFound)
	})
	return mux, nil
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	handler, err := newHandler(database)
	if err != nil {
		log.Fatalf("Failed to attach admin routes: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    *listen,
		Handler: handler,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()
	log.Printf("gpr-admin %s serving %s on %s", version.String(), database.Path(), *listen)

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	log.Printf("Graceful shutdown complete")
}
