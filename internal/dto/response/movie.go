package response

import (
	"time"

	"movie-catalog/internal/data/entity"
)

type MovieResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	PublishingYear string    `json:"publishingYear"`
	Poster         string    `json:"poster"`
	UserEmail      string    `json:"userEmail"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func MovieToResponse(movie *entity.Movie) MovieResponse {
	return MovieResponse{
		ID:             movie.ID.String(),
		Title:          movie.Title,
		PublishingYear: movie.PublishingYear,
		Poster:         movie.Poster,
		UserEmail:      movie.UserEmail,
		CreatedAt:      movie.CreatedAt,
		UpdatedAt:      movie.UpdatedAt,
	}
}

func MoviesToResponse(movies []*entity.Movie) []MovieResponse {
	out := make([]MovieResponse, len(movies))
	for i, movie := range movies {
		out[i] = MovieToResponse(movie)
	}
	return out
}
