package router

import (
	"log/slog"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andymarkow/pandero/internal/auth"
	"github.com/andymarkow/pandero/internal/server/handlers"
	"github.com/andymarkow/pandero/internal/storage"
)

type Options struct {
	log      *slog.Logger
	secret   []byte
	handlers []handlers.Option
}

func NewRouter(store storage.Storage, opts ...Option) chi.Router {
	r := chi.NewRouter()

	rOpts := Options{
		log:    slog.Default(),
		secret: []byte(""),
	}

	for _, opt := range opts {
		opt(&rOpts)
	}

	tokenAuth := jwtauth.New("HS256", rOpts.secret, nil)

	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.StripSlashes,
		middleware.Logger,
		Instrument,
	)

	hOpts := append([]handlers.Option{
		handlers.WithLogger(rOpts.log),
		handlers.WithAuth(auth.NewJWTAuth(rOpts.secret)),
	}, rOpts.handlers...)

	h := handlers.NewHandlers(store, hOpts...)

	r.Get("/ping", h.Ping)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Post("/api/user/login", h.UserLogin)
		r.Post("/api/admin/login", h.AdminLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(
			jwtauth.Verifier(tokenAuth),
			jwtauth.Authenticator(tokenAuth),
			RequireRole(auth.RoleMember),
		)

		r.Get("/api/user/schedule", h.GetUserSchedule)
		r.Get("/api/user/payments", h.GetUserPayments)
		r.Post("/api/user/payments", h.CreateUserPayment)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(
			jwtauth.Verifier(tokenAuth),
			jwtauth.Authenticator(tokenAuth),
			RequireRole(auth.RoleAdmin),
		)

		r.Get("/users", h.GetUsers)
		r.Post("/users", h.CreateUser)
		r.Get("/members/{id}/schedule", h.GetMemberSchedule)

		r.Get("/groups", h.GetGroups)
		r.Post("/groups", h.CreateGroup)

		r.Route("/groups/{name}", func(r chi.Router) {
			r.Get("/", h.GetGroupSummary)
			r.Put("/", h.UpdateGroup)
			r.Get("/members", h.GetGroupMembers)
			r.Post("/members", h.CreateGroupMember)
			r.Post("/lottery", h.DrawGroupTurns)
			r.Get("/payments", h.GetGroupPayments)
			r.Post("/payments", h.CreateCashPayment)
		})

		r.Post("/payments/{id}/approve", h.ApprovePayment)
		r.Post("/payments/{id}/reject", h.RejectPayment)
	})

	return r
}

type Option func(r *Options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.log = logger
	}
}

func WithSecret(secret []byte) Option {
	return func(o *Options) {
		o.secret = secret
	}
}

// WithHandlerOptions passes extra options to the handlers.
func WithHandlerOptions(opts ...handlers.Option) Option {
	return func(o *Options) {
		o.handlers = append(o.handlers, opts...)
	}
}
