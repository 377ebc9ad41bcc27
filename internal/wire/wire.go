package wire

import (
	"context"
	"net/http"
	"time"

	"travel-agency/internal/adaptor"
	"travel-agency/internal/usecase"
	"travel-agency/pkg/middleware"
	"travel-agency/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App menyimpan semua dependencies
type App struct {
	Router *chi.Mux
}

// guards are the auth middlewares shared by every route group.
type guards struct {
	auth     func(http.Handler) http.Handler
	optional func(http.Handler) http.Handler
	admin    func(http.Handler) http.Handler
}

// Wiring builds handlers on top of the services and mounts every route.
func Wiring(service *usecase.Service, db Pinger, config *utils.Config, logger *zap.Logger) *App {
	handler := adaptor.NewHandler(service, logger)

	g := guards{
		auth:     middleware.Auth(service.Auth, logger),
		optional: middleware.OptionalAuth(service.Auth, logger),
		admin:    middleware.Admin(logger),
	}

	return &App{
		Router: setupRouter(handler, g, db, config, logger),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	g guards,
	db Pinger,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(config.App.CORSOrigins...))

	// Apply routes
	wireAuth(r, handler.Auth, g)
	wireUser(r, handler.User, g)
	wirePackage(r, handler.Package, g)
	wireBooking(r, handler.Booking, g)
	wirePayment(r, handler.Payment, g)
	wireReview(r, handler.Review, g)
	wireNews(r, handler.News, g)

	r.Get("/health", health(db, logger))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func health(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "database unavailable", nil, nil)
			return
		}
		utils.ResponseSuccess(w, "OK", nil)
	}
}
