package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/fleetledger/internal/auth"
	"github.com/MrJamesThe3rd/fleetledger/internal/http/export"
	"github.com/MrJamesThe3rd/fleetledger/internal/http/fleet"
	"github.com/MrJamesThe3rd/fleetledger/internal/http/fuel"
	"github.com/MrJamesThe3rd/fleetledger/internal/http/importcsv"
	"github.com/MrJamesThe3rd/fleetledger/internal/http/ledger"
	"github.com/MrJamesThe3rd/fleetledger/internal/http/matching"
)

type Options struct {
	JWTSecret      []byte
	JWTIssuer      string
	AllowedOrigins []string
}

type Handlers struct {
	Fuel     *fuel.Handler
	Fleet    *fleet.Handler
	Ledger   *ledger.Handler
	Import   *importcsv.Handler
	Matching *matching.Handler
	Export   *export.Handler
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		// Estimates over a caller-supplied profile touch no company data.
		r.Route("/fuel", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Fuel.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(opts.JWTSecret, opts.JWTIssuer))

			r.Route("/vehicles", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Fleet.VehicleRoutes(r)
			})

			r.Route("/trips", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Fleet.TripRoutes(r)
			})

			r.Route("/ledger", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Ledger.Routes(r)
			})

			r.Route("/import", h.Import.Routes)

			r.Route("/matching", func(r chi.Router) {
				h.Matching.Routes(r)
			})

			r.Route("/export", h.Export.Routes)
		})
	})

	return router
}
