package request

// CreateMovieRequest mirrors the createMovie procedure input.
type CreateMovieRequest struct {
	UserEmail      string `json:"userEmail" validate:"required,email"`
	Title          string `json:"title" validate:"required,max=200"`
	Poster         string `json:"poster" validate:"omitempty,url"`
	PublishingYear string `json:"publishingYear" validate:"required,max=16"`
}

// UpdateMovieRequest mirrors the updateMovie procedure input.
type UpdateMovieRequest struct {
	MovieID        string `json:"movieId" validate:"required,uuid"`
	Title          string `json:"title" validate:"required,max=200"`
	Poster         string `json:"poster" validate:"omitempty,url"`
	PublishingYear string `json:"publishingYear" validate:"required,max=16"`
}

type ListMoviesRequest struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
}

type GetMovieRequest struct {
	MovieID string `json:"movieId" validate:"required,uuid"`
}
