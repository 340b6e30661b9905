package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"chatlog-insights-go/internal/analytics"
	"chatlog-insights-go/internal/dataset"
	"chatlog-insights-go/internal/logger"
	"chatlog-insights-go/internal/store"
	"chatlog-insights-go/internal/summarizer"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "chatlog-insights-go").Info("starting service")

	st := store.New()

	// optionally preload an export so charts have data before any upload
	if dataPath := os.Getenv("DATASET_PATH"); dataPath != "" {
		log.WithField("dataset_path", dataPath).Info("preloading dataset")
		data, err := os.ReadFile(dataPath)
		if err != nil {
			log.WithError(err).Fatal("failed to read dataset file")
		}
		n, err := st.Ingest(data)
		if err != nil {
			log.WithError(err).Fatal("failed to ingest dataset file")
		}
		log.WithField("records", n).Info("dataset preloaded")
	}

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	// upload endpoint: replaces the whole collection on success
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "upload")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		data, err := readUpload(r)
		if err != nil {
			reqLog.WithError(err).Warn("bad upload")
			http.Error(w, "bad upload", http.StatusBadRequest)
			return
		}
		n, err := st.Ingest(data)
		if err != nil {
			var perr *dataset.ParseError
			if errors.As(err, &perr) {
				reqLog.WithError(err).Warn("unparseable export, previous collection kept")
				http.Error(w, perr.Error(), http.StatusUnprocessableEntity)
				return
			}
			reqLog.WithError(err).Error("ingest failed")
			http.Error(w, "ingest failed", http.StatusInternalServerError)
			return
		}
		reqLog.WithField("records", n).Info("collection replaced")
		writeJSON(w, map[string]int{"records": n})
	})

	// analytics endpoint: full derived-view fan-out over the snapshot
	mux.HandleFunc("/analytics", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "analytics")
		start := time.Now()
		report := analytics.Report(st.Snapshot())
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("report computed")
		writeJSON(w, report)
	})

	// summary endpoint: best-effort AI digest, never affects the numbers
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "summary")
		records := st.Snapshot()
		report := analytics.Report(records)
		sample := summarizer.Sample(records)
		reqLog.WithField("sample_size", len(sample)).Info("requesting digest")
		digest := summarizer.Summarize(r.Context(), report, sample)
		writeJSON(w, map[string]string{"markdown": digest})
	})

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

// readUpload accepts either a multipart form with a "file" part or the
// raw export as the request body.
func readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(32 << 20); err == nil {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file part: %w", err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(r.Body)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.New().WithError(err).Error("failed to write response")
	}
}
