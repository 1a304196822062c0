package adaptor

import (
	"movie-catalog/internal/page"
	"movie-catalog/internal/usecase"
	"movie-catalog/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth  *AuthHandler
	Movie *MovieHandler
	Page  *PageHandler
}

func NewHandler(service *usecase.Service, pages *page.Pages, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:  NewAuthHandler(service.Auth, log),
		Movie: NewMovieHandler(service.Movie, log),
		Page:  NewPageHandler(pages, int64(config.Upload.MaxSizeMB)<<20, log),
	}
}
