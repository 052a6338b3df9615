package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopbot-backend/internal/assistant"
	"shopbot-backend/internal/config"
	"shopbot-backend/internal/types"
)

const maxBodyBytes = 10 << 10

type Server struct {
	router  *chi.Mux
	svc     *assistant.Service
	cfg     config.Config
	log     zerolog.Logger
	limiter *ipLimiter
}

func NewServer(cfg config.Config, svc *assistant.Service, log zerolog.Logger) *Server {
	r := chi.NewRouter()
	s := &Server{
		router:  r,
		svc:     svc,
		cfg:     cfg,
		log:     log,
		limiter: newIPLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
	}

	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(secureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", SessionHeader},
		ExposedHeaders:   []string{SessionHeader},
		AllowCredentials: cfg.AllowedOrigin != "*",
		MaxAge:           300,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Get("/health", s.handleHealth)
		r.Get("/products", s.handleProducts)
		r.Post("/chat", s.handleChat)
	})
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok", Products: s.svc.Engine().Size()})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Engine().Products())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("Message too long."))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid message format."))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid message format."))
		return
	}
	if s.cfg.MaxMessageLength > 0 && utf8.RuneCountInString(req.Message) > s.cfg.MaxMessageLength {
		writeJSON(w, http.StatusBadRequest, errorBody("Message too long."))
		return
	}

	sid := s.getOrCreateSessionID(w, r, req.SessionID)
	result := s.svc.Ask(r.Context(), sid, req.Message)

	w.Header().Set(SessionHeader, sid)
	writeJSON(w, http.StatusOK, types.ChatResponse{
		SessionID: sid,
		Reply:     result.Reply,
		Products:  result.Products,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(msg string) types.ErrorResponse {
	return types.ErrorResponse{Reply: msg}
}

// getSessionID looks at the cookie, then the header, then the request body.
// Malformed ids are skipped.
func getSessionID(r *http.Request, bodySessionID string) string {
	if cookie, err := GetSessionCookie(r); err == nil && validSessionID(cookie) {
		return cookie
	}
	if sid := r.Header.Get(SessionHeader); validSessionID(sid) {
		return sid
	}
	if sid := strings.TrimSpace(bodySessionID); validSessionID(sid) {
		return sid
	}
	return ""
}

// Session ids end up in store keys, so only short url-safe ids are accepted.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func validSessionID(sid string) bool {
	return sessionIDPattern.MatchString(sid)
}

func (s *Server) getOrCreateSessionID(w http.ResponseWriter, r *http.Request, bodySessionID string) string {
	sid := getSessionID(r, bodySessionID)
	if sid == "" {
		sid = uuid.NewString()
		s.log.Debug().Str("session", sid).Msg("created session")
	}
	SetSessionCookie(w, sid, s.cfg.SessionTTL)
	return sid
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// recoverer turns panics into the generic chat error instead of a dropped connection.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.log.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Str("request_id", chimiddleware.GetReqID(r.Context())).
					Msg("handler panicked")
				writeJSON(w, http.StatusInternalServerError, errorBody("Unable to process your request right now."))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
