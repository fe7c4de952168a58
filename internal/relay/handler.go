package relay

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gopkg.in/op/go-logging.v1"

	"blindrelay/internal/domain"
	"blindrelay/internal/instrument"
	"blindrelay/internal/protocol/wire"
	"blindrelay/internal/util/memzero"
)

const (
	// MaxBodySize caps request bodies.
	MaxBodySize = 64 << 10

	// HeaderClientID names the submitting or fetching client.
	HeaderClientID = "X-Client-Id"
	// HeaderRequestID is echoed on every response.
	HeaderRequestID = "X-Request-Id"

	contentType = "application/octet-stream"
)

// Handler serves the relay HTTP API.
type Handler struct {
	router *mux.Router
	svc    domain.RelayService
	keys   domain.SessionKeyring
	log    *logging.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithMetrics exposes the instrument counters on /metrics.
func WithMetrics() HandlerOption {
	return func(h *Handler) {
		h.router.Handle("/metrics", instrument.Handler()).Methods(http.MethodGet)
	}
}

// NewHandler builds the relay router.
func NewHandler(
	svc domain.RelayService,
	keys domain.SessionKeyring,
	log *logging.Logger,
	opts ...HandlerOption,
) *Handler {
	h := &Handler{router: mux.NewRouter(), svc: svc, keys: keys, log: log}
	h.router.Use(h.accessLog)
	h.router.HandleFunc("/v1/invitations", h.handleSubmit).Methods(http.MethodPost)
	h.router.HandleFunc("/v1/invitations/{id:[0-9a-fA-F]{64}}", h.handleFetch).Methods(http.MethodGet)
	h.router.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	key, ok := h.sessionKey(w, r)
	if !ok {
		return
	}
	defer memzero.Key((*[32]byte)(&key))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, codeTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, r, err)
		return
	}
	env, err := wire.ParseEnvelope(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.svc.Receive(r.Context(), key, env); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	key, ok := h.sessionKey(w, r)
	if !ok {
		return
	}
	defer memzero.Key((*[32]byte)(&key))
	id, err := domain.ParseInvitationID(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, codeNotFound, http.StatusNotFound)
		return
	}

	env, err := h.svc.Fetch(r.Context(), id, key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wire.MarshalEnvelope(env))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok\n")
}

// sessionKey resolves the caller's key or writes a 401.
func (h *Handler) sessionKey(w http.ResponseWriter, r *http.Request) (domain.SessionKey, bool) {
	client := domain.ClientID(r.Header.Get(HeaderClientID))
	if client == "" {
		http.Error(w, codeUnknownClient, http.StatusUnauthorized)
		return domain.SessionKey{}, false
	}
	key, err := h.keys.SessionKey(r.Context(), client)
	if err != nil {
		h.writeError(w, r, err)
		return domain.SessionKey{}, false
	}
	return key, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Errorf("%s %s [%s]: %v", r.Method, r.URL.Path, w.Header().Get(HeaderRequestID), err)
	}
	http.Error(w, code, status)
}

// statusRecorder remembers the status written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.New().String()
		w.Header().Set(HeaderRequestID, reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		h.log.Debugf("%s %s %s %d %s", reqID, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
