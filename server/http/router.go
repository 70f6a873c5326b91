package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Paris769/prestashop-reorder-interface/internal/config"
	"github.com/Paris769/prestashop-reorder-interface/internal/middleware"
	reoHnd "github.com/Paris769/prestashop-reorder-interface/internal/reorder/handler"
	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/service"
	"github.com/Paris769/prestashop-reorder-interface/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	// session-scoped memoization of stats and association rules
	session := service.NewSession()

	r.Get("/health", handlers.Health)

	r.Post("/match", reoHnd.Match(cfg, logger, session))
	r.Post("/match/export", reoHnd.MatchExport(cfg, logger, session))
	r.Post("/recommendations", reoHnd.Recommend(cfg, logger, session))

	return r
}
