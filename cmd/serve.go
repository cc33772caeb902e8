package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charter-stone/analyst-cli/internal/model"
	"github.com/charter-stone/analyst-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for analysis requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initAnalyst(ctx, cfg.Analyst.EnableV2)
		if err != nil {
			return err
		}
		defer env.Close()

		router := newRouter(ctx, env, cfg.Analyst.OutputDir)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the HTTP routes for the webhook server. The background
// context outlives individual requests so async analyses survive the
// request lifecycle.
func newRouter(bgCtx context.Context, env *analystEnv, outDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		filter := store.RunFilter{
			Status: model.RunStatus(req.URL.Query().Get("status")),
			EIN:    req.URL.Query().Get("ein"),
			Limit:  50,
		}
		runs, err := env.Store.ListRuns(req.Context(), filter)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/runs/{runID}", func(w http.ResponseWriter, req *http.Request) {
		run, err := env.Store.GetRun(req.Context(), chi.URLParam(req, "runID"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		writeJSON(w, http.StatusOK, run)
	})

	r.Get("/profiles/{ein}", func(w http.ResponseWriter, req *http.Request) {
		profile, err := env.Store.GetLatestProfile(req.Context(), chi.URLParam(req, "ein"))
		if err != nil {
			zap.L().Error("get profile failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get profile failed"})
			return
		}
		if profile == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no profile for ein"})
			return
		}
		writeJSON(w, http.StatusOK, profile)
	})

	r.Post("/webhook/analyze", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Name string `json:"name"`
			EIN  string `json:"ein"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.Name == "" || body.EIN == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and ein are required"})
			return
		}

		inst := model.Institution{Name: body.Name, EIN: body.EIN}
		run, err := env.Store.CreateRun(req.Context(), inst)
		if err != nil {
			zap.L().Error("create run failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create run failed"})
			return
		}

		// Run the analysis asynchronously; the caller polls /runs/{id}.
		go func() {
			if env.Analyst == nil {
				return
			}
			result, err := analyzeRun(bgCtx, env, run.ID, inst, outDir)
			if err != nil {
				zap.L().Error("webhook analysis failed",
					zap.String("institution", inst.Name),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("webhook analysis complete",
				zap.String("institution", inst.Name),
				zap.String("distress_level", string(result.DistressLevel)),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":      "accepted",
			"run_id":      run.ID,
			"institution": inst.Name,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
