package wire

import (
	"movie-catalog/internal/adaptor"
	"movie-catalog/internal/data/repository"
	"movie-catalog/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wirePage mounts the pages and the form routes. Sessions are loaded but
// not required; the pages redirect anonymous visitors themselves.
func wirePage(
	r chi.Router,
	pageHandler *adaptor.PageHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(repo.Session, log))

		r.Get("/movies", pageHandler.ListMovies)
		r.Get("/movies/create", pageHandler.CreateMovie)
		r.Get("/movies/{movieId}", pageHandler.EditMovie)

		r.Route("/drafts/{draftId}", func(r chi.Router) {
			r.Get("/", pageHandler.GetDraft)
			r.Patch("/", pageHandler.UpdateDraft)
			r.Delete("/", pageHandler.CancelDraft)
			r.Post("/poster", pageHandler.DropPoster)
			r.Delete("/poster", pageHandler.RemovePoster)
			r.Post("/submit", pageHandler.SubmitDraft)
		})
	})
}
