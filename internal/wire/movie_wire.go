package wire

import (
	"movie-catalog/internal/adaptor"
	"movie-catalog/internal/data/repository"
	"movie-catalog/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireMovie(
	r chi.Router,
	movieHandler *adaptor.MovieHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Route("/api/movies", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		r.Get("/", movieHandler.ListMovies)       // GET /api/movies
		r.Post("/", movieHandler.CreateMovie)     // POST /api/movies
		r.Get("/{id}", movieHandler.GetMovieByID) // GET /api/movies/{id}
		r.Put("/{id}", movieHandler.UpdateMovie)  // PUT /api/movies/{id}
	})
}
