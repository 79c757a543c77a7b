package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rocjay1/chanchito/internal/config"
	"github.com/rocjay1/chanchito/internal/handler"
	"github.com/rocjay1/chanchito/internal/logger"
	"github.com/rocjay1/chanchito/internal/pricing"
	"github.com/rocjay1/chanchito/internal/services"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// bodyPreviewLimit caps how much of a request body is logged.
const bodyPreviewLimit = 512

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	// Initialize Services
	store, closeStore, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to init store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	deps := &handler.Dependencies{
		Store: store,
		Settings: handler.Settings{
			DefaultUserID:     cfg.DefaultUserID,
			UserEmail:         cfg.UserEmail,
			Location:          cfg.Location,
			ReminderDaysAhead: cfg.ReminderDaysAhead,
			PriceBatchSize:    cfg.PriceBatchSize,
			UploadContainer:   cfg.UploadContainer,
			JobQueue:          cfg.JobQueue,
		},
	}

	if cfg.BlobServiceURL != "" {
		blobService, err := services.NewBlobService(cfg.BlobServiceURL)
		if err != nil {
			slog.Warn("failed to init blob service (uploads disabled)", "error", err)
		} else {
			deps.Blob = blobService
		}
	}
	if cfg.QueueServiceURL != "" {
		queueService, err := services.NewQueueService(cfg.QueueServiceURL)
		if err != nil {
			slog.Warn("failed to init queue service (background jobs disabled)", "error", err)
		} else {
			deps.Queue = queueService
		}
	}
	if cfg.CommunicationServicesEndpoint != "" {
		emailService, err := services.NewEmailService(cfg.CommunicationServicesEndpoint, cfg.SenderEmail, nil)
		if err != nil {
			slog.Warn("failed to init email service (continuing anyway)", "error", err)
		} else {
			deps.Email = emailService
		}
	}

	client := pricing.NewHTTPClient(cfg.PriceTimeout)
	deps.Prices = pricing.NewDispatcher(client, cfg.PriceTimeout)
	deps.FX = pricing.NewFXProvider(client, cfg.FXCacheTTL)

	// Router
	mux := http.NewServeMux()
	deps.RegisterRoutes(mux)

	// Catch-all handler for unmatched requests to debug what the Host is sending
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string)
		for k, v := range r.Header {
			headers[k] = strings.Join(v, ", ")
		}
		slog.Warn("unmatched request",
			"method", r.Method,
			"path", r.URL.Path,
			"headers", headers,
			"content_length", r.ContentLength,
		)
		handler.WriteError(w, http.StatusNotFound, "Not found")
	})

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	server := loggingMiddleware(rateLimitMiddleware(limiter, mux))

	slog.Info("starting server", "port", cfg.Port, "store", cfg.StoreDriver)
	if err := http.ListenAndServe(":"+cfg.Port, server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// openStore returns the store selected by STORE_DRIVER and a function
// releasing it.
func openStore(cfg *config.Config) (handler.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		db, err := services.NewSQLiteService(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() {
			if err := db.Close(); err != nil {
				slog.Error("failed to close sqlite database", "error", err)
			}
		}, nil
	default:
		db, err := services.NewDatabaseService(cfg.TableServiceURL, cfg.TableNames)
		if err != nil {
			return nil, nil, err
		}
		return db, func() {}, nil
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func rateLimitMiddleware(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			slog.Warn("rate limit exceeded", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			handler.WriteError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Read body for logging (and restore it)
		var bodyBytes []byte
		if r.Body != nil {
			bodyBytes, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
		preview := bodyBytes
		if len(preview) > bodyPreviewLimit {
			preview = preview[:bodyPreviewLimit]
		}

		slog.Debug("incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"content_type", r.Header.Get("Content-Type"),
			"content_length", r.ContentLength,
			"body_preview", string(preview),
		)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		slog.Info("request completed", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}
