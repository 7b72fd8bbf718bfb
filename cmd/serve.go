package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reliefmap/shelter-cli/internal/model"
	"github.com/reliefmap/shelter-cli/internal/retrieval"
	"github.com/reliefmap/shelter-cli/internal/shelter"
)

var servePort int

// serverEnv bundles the handler dependencies so tests can build a router
// around fakes.
type serverEnv struct {
	orch *shelter.Orchestrator
	idx  *retrieval.Index
	topK int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the facility API for the map client",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		idx, err := retrieval.NewBundledIndex(ctx, retrieval.HashingEmbedder{})
		if err != nil {
			return err
		}

		env := &serverEnv{
			orch: newOrchestrator(store),
			idx:  idx,
			topK: cfg.Knowledge.TopK,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *serverEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/shelters", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.orch.Get(r.Context()))
	})

	r.Post("/shelters/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.orch.Refresh(r.Context()))
	})

	r.Get("/shelters/nearby", func(w http.ResponseWriter, r *http.Request) {
		lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			http.Error(w, `{"error":"lat and lon query parameters are required"}`, http.StatusBadRequest)
			return
		}

		result := env.orch.Get(r.Context())
		model.SortByDistance(result.Shelters, lat, lon)
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/knowledge/search", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			http.Error(w, `{"error":"q query parameter is required"}`, http.StatusBadRequest)
			return
		}

		matches, err := env.idx.Search(r.Context(), query, env.topK)
		if err != nil {
			zap.L().Error("knowledge search failed", zap.Error(err))
			http.Error(w, `{"error":"search failed"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
	})

	return r
}

// requestID tags each request with a correlation id for log stitching.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
