package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"movie-catalog/internal/dto/request"
	"movie-catalog/internal/usecase"
	"movie-catalog/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MovieHandler exposes the movie procedures as a JSON API. Every route sits
// behind AuthSession and only ever touches the caller's own movies.
type MovieHandler struct {
	service usecase.MovieService
	log     *zap.Logger
}

func NewMovieHandler(service usecase.MovieService, log *zap.Logger) *MovieHandler {
	return &MovieHandler{
		service: service,
		log:     log.With(zap.String("handler", "movie")),
	}
}

// ListMovies handles GET /api/movies
func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	email, ok := utils.GetEmailFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	// user_email is optional and must name the caller
	if q := strings.TrimSpace(r.URL.Query().Get("user_email")); q != "" && !strings.EqualFold(q, email) {
		utils.ResponseForbidden(w, "Cannot list another user's movies")
		return
	}

	movies, err := h.service.ListMovies(r.Context(), &request.ListMoviesRequest{UserEmail: email})
	if err != nil {
		h.handleServiceError(w, err, "list movies")
		return
	}

	utils.ResponseSuccess(w, "success", movies)
}

// GetMovieByID handles GET /api/movies/{id}
func (h *MovieHandler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	email, ok := utils.GetEmailFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	movieID := chi.URLParam(r, "id")
	if movieID == "" {
		utils.ResponseBadRequest(w, "Movie ID is required", nil)
		return
	}

	movie, err := h.service.GetMovieByID(r.Context(), &request.GetMovieRequest{MovieID: movieID})
	if err != nil {
		h.handleServiceError(w, err, "get movie by ID")
		return
	}
	if movie == nil || movie.UserEmail != email {
		utils.ResponseNotFound(w, "Movie not found")
		return
	}

	utils.ResponseSuccess(w, "Movie retrieved successfully", movie)
}

// CreateMovie handles POST /api/movies
func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	email, ok := utils.GetEmailFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if req.UserEmail != "" && !strings.EqualFold(strings.TrimSpace(req.UserEmail), email) {
		utils.ResponseForbidden(w, "Cannot create movies for another user")
		return
	}
	// stored under the session's spelling so list and edit find it
	req.UserEmail = email

	movie, err := h.service.CreateMovie(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create movie")
		return
	}

	utils.ResponseCreated(w, "Movie created successfully", movie)
}

// UpdateMovie handles PUT /api/movies/{id}
func (h *MovieHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	email, ok := utils.GetEmailFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	req.MovieID = chi.URLParam(r, "id")

	existing, err := h.service.GetMovieByID(r.Context(), &request.GetMovieRequest{MovieID: req.MovieID})
	if err != nil {
		h.handleServiceError(w, err, "update movie")
		return
	}
	if existing == nil || existing.UserEmail != email {
		utils.ResponseNotFound(w, "Movie not found")
		return
	}

	movie, err := h.service.UpdateMovie(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "update movie")
		return
	}

	utils.ResponseSuccess(w, "Movie updated successfully", movie)
}

func (h *MovieHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	code, msg := errorStatus(err)
	logServiceError(h.log, err, operation, code)
	utils.ResponseJSON(w, code, false, msg, nil, nil)
}
