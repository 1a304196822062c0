package wire

import (
	"net/http"

	"movie-catalog/internal/adaptor"
	"movie-catalog/internal/data/repository"
	"movie-catalog/internal/form"
	"movie-catalog/internal/notify"
	"movie-catalog/internal/page"
	"movie-catalog/internal/upload"
	"movie-catalog/internal/usecase"
	"movie-catalog/pkg/middleware"
	"movie-catalog/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and the long-lived pieces the server has to run
// and stop.
type App struct {
	Router *chi.Mux
	Drafts *form.Registry
}

// Wiring builds every dependency from the repositories and config.
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, logger)

	uploader := upload.NewClient(config.Upload, nil, logger)
	drafts := form.NewRegistry(logger)
	pages := page.NewPages(
		service.Movie,
		drafts,
		uploader,
		page.ContextSessions{},
		notify.NewRequestSink(logger),
		logger,
	)

	handler := adaptor.NewHandler(service, pages, config, logger)

	return &App{
		Router: setupRouter(handler, repo, config, logger),
		Drafts: drafts,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))

	wireAuth(r, handler.Auth, repo, logger)
	wireMovie(r, handler.Movie, repo, logger)
	wirePage(r, handler.Page, repo, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
