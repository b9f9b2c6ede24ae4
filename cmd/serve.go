package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/monitoring"
	"github.com/sells-group/visibility-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for scan requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		runScan := func(profile model.BusinessProfile) {
			scan, err := env.Pipeline.Run(ctx, profile)
			if err != nil {
				zap.L().Error("webhook scan failed",
					zap.String("business", profile.Name),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("webhook scan complete",
				zap.String("scan_id", scan.ID),
				zap.String("business", profile.Name),
				zap.Int("overall_recognition", scan.Result.Analysis.OverallRecognition),
			)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Store, runScan),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the HTTP surface. The scan runner is injected so
// tests can observe requests without hitting real providers.
func newRouter(st store.Store, runScan func(model.BusinessProfile)) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/webhook/scan", func(w http.ResponseWriter, req *http.Request) {
		var profile model.BusinessProfile
		if err := json.NewDecoder(req.Body).Decode(&profile); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if profile.Name == "" {
			http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
			return
		}

		// Run the scan asynchronously; the caller polls /scans.
		go runScan(profile)

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":   "accepted",
			"business": profile.Name,
		})
	})

	r.Get("/scans", func(w http.ResponseWriter, req *http.Request) {
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		filter := store.ScanFilter{
			Status: model.ScanStatus(req.URL.Query().Get("status")),
			Domain: req.URL.Query().Get("domain"),
			Limit:  limit,
		}

		scans, err := st.ListScans(req.Context(), filter)
		if err != nil {
			zap.L().Error("list scans failed", zap.Error(err))
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		if scans == nil {
			scans = []model.Scan{}
		}
		writeJSON(w, http.StatusOK, scans)
	})

	r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
		lookback, _ := strconv.Atoi(req.URL.Query().Get("lookback"))
		if lookback <= 0 {
			lookback = 24
		}

		snap, err := monitoring.NewCollector(st).Collect(req.Context(), lookback)
		if err != nil {
			zap.L().Error("collect stats failed", zap.Error(err))
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	r.Get("/scans/{id}", func(w http.ResponseWriter, req *http.Request) {
		scan, err := st.GetScan(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			http.Error(w, `{"error":"scan not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, scan)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
