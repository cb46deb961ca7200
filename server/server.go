package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
	"github.com/RyanBlaney/sonido-armonia/config"
	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/RyanBlaney/sonido-armonia/pattern"
	"github.com/RyanBlaney/sonido-armonia/scalehelper"
	analysisconfig "github.com/RyanBlaney/sonido-armonia/scalehelper/config"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const maxBodyBytes = 1 << 20

// Server exposes the analysis engine to the browser editor over JSON/HTTP
type Server struct {
	config   *config.Config
	analysis *analysisconfig.AnalysisConfig
	sessions *SessionStore
	router   *mux.Router
	logger   logging.Logger
}

// New builds the router. A nil analysis config uses the defaults.
func New(cfg *config.Config, analysis *analysisconfig.AnalysisConfig) *Server {
	s := &Server{
		config:   cfg,
		analysis: analysis.WithDefaults(),
		sessions: NewSessionStore(cfg.SessionTTL),
		router:   mux.NewRouter().StrictSlash(true),
		logger: logging.WithFields(logging.Fields{
			"component": "http_server",
		}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestLogger)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/scales", s.handleScales).Methods(http.MethodGet)
	s.router.HandleFunc("/scales/{root}/{scale}", s.handleScale).Methods(http.MethodGet)
	s.router.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)

	s.router.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	s.router.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
	s.router.HandleFunc("/sessions/{id}/chords", s.handleAddChord).Methods(http.MethodPost)
	s.router.HandleFunc("/sessions/{id}/suggestions", s.handleSuggestions).Methods(http.MethodGet)
	s.router.HandleFunc("/sessions/{id}/history", s.handleClearHistory).Methods(http.MethodDelete)
}

// Handler returns the router wrapped with CORS for the configured origins
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.router)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", logging.Fields{"addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.ContextWithFields(r.Context(), logging.Fields{
			"request_id": uuid.NewString(),
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.WithContext(ctx).Debug("Request completed", logging.Fields{
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

type keyRequest struct {
	Root  string `json:"root"`
	Scale string `json:"scale"`
}

type analyzeRequest struct {
	keyRequest
	Notes []pattern.NoteEvent `json:"notes"`
}

type chordRequest struct {
	Name string `json:"name"`
}

type scaleResponse struct {
	Key     string                  `json:"key"`
	Scale   tonal.Scale             `json:"scale"`
	Notes   []string                `json:"notes"`
	Degrees []tonal.ScaleDegree     `json:"degrees"`
	Chords  []tonal.ChordSuggestion `json:"chords"`
}

type sessionResponse struct {
	ID      string                `json:"id"`
	Key     string                `json:"key"`
	History []tonal.ExtendedChord `json:"history"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleScales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tonal.Scales())
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ctx, err := tonal.NewScaleContext(vars["root"], vars["scale"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, scaleResponse{
		Key:     ctx.KeyName(),
		Scale:   ctx.Scale(),
		Notes:   ctx.ScaleNotes(),
		Degrees: ctx.Degrees(),
		Chords:  ctx.ChordSuggestions(),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := pattern.Validate(req.Notes); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	ctx, err := s.scaleContext(req.keyRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := scalehelper.NewAnalyzer(ctx, s.analysis).Analyze(req.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	// the body is optional; without one the configured default key is used
	var req keyRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, err)
		return
	}

	ctx, err := s.scaleContext(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	advisor := scalehelper.NewAnalyzer(ctx, s.analysis).NewAdvisor()
	sess := s.sessions.Create(advisor)

	s.logger.WithContext(r.Context()).Info("Session created", logging.Fields{
		"session_id": sess.ID(),
		"key":        ctx.KeyName(),
	})

	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:      sess.ID(),
		Key:     ctx.KeyName(),
		History: []tonal.ExtendedChord{},
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(mux.Vars(r)["id"]) {
		s.writeError(w, r, errSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddChord(w http.ResponseWriter, r *http.Request) {
	var req chordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.withSession(w, r, func(sess *Session) {
		chord, err := sess.advisor.Context().FindChord(req.Name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		sess.advisor.AddToHistory(chord)

		writeJSON(w, http.StatusOK, sessionResponse{
			ID:      sess.ID(),
			Key:     sess.advisor.Context().KeyName(),
			History: sess.advisor.History(),
		})
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *Session) {
		writeJSON(w, http.StatusOK, map[string]any{
			"suggestions": sess.advisor.RankNext(),
		})
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *Session) {
		sess.advisor.ClearHistory()
		w.WriteHeader(http.StatusNoContent)
	})
}

// withSession runs fn holding the session lock
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(sess *Session)) {
	sess, ok := s.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, r, errSessionNotFound)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
}

// scaleContext resolves a request key, filling blanks from the configured defaults
func (s *Server) scaleContext(req keyRequest) (*tonal.ScaleContext, error) {
	root, scale := req.Root, req.Scale
	if root == "" {
		root = s.config.DefaultRoot
	}
	if scale == "" {
		scale = s.config.DefaultScale
	}
	return tonal.NewScaleContext(root, scale)
}

var (
	errSessionNotFound = errors.New("session not found")
	errBadRequest      = errors.New("bad request")
)

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, chroma.ErrInvalidPitchName),
		errors.Is(err, pattern.ErrInvalidNote),
		errors.Is(err, tonal.ErrInvalidScaleID),
		errors.Is(err, tonal.ErrUnknownChord):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithContext(r.Context()).Error(err, "Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
