package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/andymarkow/pandero/internal/auth"
	"github.com/andymarkow/pandero/internal/errmsg"
	"github.com/andymarkow/pandero/internal/idempotency"
	"github.com/andymarkow/pandero/internal/storage"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	storage storage.Storage
	log     *slog.Logger
	auth    *auth.JWTAuth
	admin   *auth.AdminCredentials
	idem    *idempotency.Registry
	now     func() time.Time
	rnd     *rand.Rand
}

// NewHandlers returns a new Handlers instance.
func NewHandlers(store storage.Storage, opts ...Option) *Handlers {
	handlers := &Handlers{
		storage: store,
		log:     slog.Default(),
		auth:    auth.NewJWTAuth([]byte("")),
		now:     time.Now,
		rnd:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec
	}

	// Apply options
	for _, opt := range opts {
		opt(handlers)
	}

	return handlers
}

// Option is a functional option for Handlers.
type Option func(h *Handlers)

// WithLogger is a option for Handlers that sets logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handlers) {
		h.log = logger
	}
}

func WithAuth(auth *auth.JWTAuth) Option {
	return func(h *Handlers) {
		h.auth = auth
	}
}

func WithAdminCredentials(creds *auth.AdminCredentials) Option {
	return func(h *Handlers) {
		h.admin = creds
	}
}

// WithIdempotency enables Idempotency-Key handling on payment submission.
func WithIdempotency(reg *idempotency.Registry) Option {
	return func(h *Handlers) {
		h.idem = reg
	}
}

// WithClock sets the source of the current time used for schedules.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) {
		h.now = now
	}
}

// WithRand sets the random source of the turn lottery.
func WithRand(rnd *rand.Rand) Option {
	return func(h *Handlers) {
		h.rnd = rnd
	}
}

type JSONResponse struct {
	Message any `json:"message,omitempty"`
	Error   any `json:"error,omitempty"`
}

func handleJSONResponse(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func handleError(w http.ResponseWriter, err errmsg.HTTPError) {
	resp := &JSONResponse{
		Error: err.Error(),
	}

	w.Header().Set("content-type", "application/json")
	w.WriteHeader(err.Code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// decodeJSON decodes the request body into v and answers the request itself
// when that fails.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))

		if errors.Is(err, io.EOF) {
			handleError(w, errmsg.ErrRequestPayloadEmpty)

			return false
		}

		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return false
	}

	return true
}

// handleStorageError maps storage sentinels to their HTTP errors.
func (h *Handlers) handleStorageError(w http.ResponseWriter, call string, err error) {
	h.log.Error(call, slog.Any("error", err))

	switch {
	case errors.Is(err, storage.ErrUserAlreadyExists):
		handleError(w, errmsg.ErrUserAlreadyExists)
	case errors.Is(err, storage.ErrUserNotFound):
		handleError(w, errmsg.ErrUserNotFound)
	case errors.Is(err, storage.ErrGroupAlreadyExists):
		handleError(w, errmsg.ErrGroupAlreadyExists)
	case errors.Is(err, storage.ErrGroupNotFound):
		handleError(w, errmsg.ErrGroupNotFound)
	case errors.Is(err, storage.ErrMembershipAlreadyExists):
		handleError(w, errmsg.ErrMembershipAlreadyExists)
	case errors.Is(err, storage.ErrPaymentNotFound):
		handleError(w, errmsg.ErrPaymentNotFound)
	case errors.Is(err, storage.ErrPaymentNotPending):
		handleError(w, errmsg.ErrPaymentNotPending)
	default:
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))
	}
}

// subject returns the user id from the JWT sub claim.
func (h *Handlers) subject(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil {
		h.log.Error("jwtauth.FromContext()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return "", false
	}

	return token.Subject(), true
}

func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Ping(r.Context()); err != nil {
		h.log.Error("storage.Ping", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, &JSONResponse{Message: "ok"})
}
