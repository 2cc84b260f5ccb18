package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"deliverynav/internal/cache"
	"deliverynav/internal/core"
	applog "deliverynav/internal/log"
	"deliverynav/internal/services"
)

// Server wires the API routes over the identity and record services. Synthetic
// read endpoints need only a resolved identity; record endpoints go through
// storage.
type Server struct {
	http.Server
	identities  *services.IdentityService
	records     *services.RecordService
	rateLimiter *rateLimiter

	// LRU cache for monthly totals, invalidated on record creation.
	totalsCache  *cache.LRUCache[core.WindowTotal]
	cacheManager *cache.Manager

	loc          *time.Location
	defaultGoal  int
	logger       *applog.Logger
	structLog    *applog.StructuredLogger
	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, identities *services.IdentityService, records *services.RecordService, loc *time.Location, defaultGoal int) *Server {
	if loc == nil {
		loc = time.UTC
	}
	mux := http.NewServeMux()
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		identities:   identities,
		records:      records,
		rateLimiter:  newRateLimiter(60),
		totalsCache:  cache.NewLRUCache[core.WindowTotal](200, 1*time.Minute),
		cacheManager: cache.NewManager(),
		loc:          loc,
		defaultGoal:  defaultGoal,
		logger:       logger,
		structLog:    applog.NewStructuredLogger(logger),
	}

	s.cacheManager.Register(s.totalsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/", s.withCommon(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/daily-route", s.withCommon(s.handleDailyRoute))
	mux.HandleFunc("/api/daily-summary", s.withCommon(s.handleDailySummary))
	mux.HandleFunc("/api/heatmap-data", s.withCommon(s.handleHeatmap))
	mux.HandleFunc("/api/weekly-forecast", s.withCommon(s.handleWeeklyForecast))
	mux.HandleFunc("/api/guest/init", s.withCommon(s.handleGuestInit))
	mux.HandleFunc("/api/guest/profile", s.withCommon(s.handleGuestProfile))
	mux.HandleFunc("/api/records", s.withCommon(s.handleRecords))
	mux.HandleFunc("/api/monthly-total", s.withCommon(s.handleMonthlyTotal))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withCommon adds request tracing, CORS, security headers, rate limiting,
// and request logging to a handler.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		reqLogger := s.logger.With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		// Mobile clients call from a different origin and carry the device
		// token in a custom header, so the preflight must allow it.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+deviceTokenHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		reqLog := applog.NewStructuredLogger(reqLogger)
		reqLog.LogHTTPStart(ctx, r, clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			reqLogger.WithComponent(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		reqLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("not found").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{
		"service": "delivery-navigator",
		"status":  "ok",
	}).Write(w)
}

// resolveIdentity maps the request's device token to an identity. Requests
// without a token share the anonymous identity rather than failing.
func (s *Server) resolveIdentity(r *http.Request) (core.Identity, error) {
	return s.identities.Resolve(r.Context(), DeviceToken(r))
}

func (s *Server) totalsCacheKey(identityID int64, year, month int) string {
	return strconv.FormatInt(identityID, 10) + ":" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func (s *Server) invalidateTotal(identityID int64, at time.Time) {
	local := at.In(s.loc)
	s.totalsCache.Delete(s.totalsCacheKey(identityID, local.Year(), int(local.Month())))
}
