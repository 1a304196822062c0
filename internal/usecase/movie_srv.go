package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"movie-catalog/internal/data/entity"
	"movie-catalog/internal/data/repository"
	"movie-catalog/internal/dto/request"
	"movie-catalog/internal/dto/response"
	"movie-catalog/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MovieService is the procedure surface pages and the JSON API call into.
type MovieService interface {
	CreateMovie(ctx context.Context, req *request.CreateMovieRequest) (*response.MovieResponse, error)
	UpdateMovie(ctx context.Context, req *request.UpdateMovieRequest) (*response.MovieResponse, error)
	ListMovies(ctx context.Context, req *request.ListMoviesRequest) ([]response.MovieResponse, error)
	// GetMovieByID returns nil, nil when no live movie has that id.
	GetMovieByID(ctx context.Context, req *request.GetMovieRequest) (*response.MovieResponse, error)
}

type movieService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewMovieService(
	repo *repository.Repository,
	log *zap.Logger,
) MovieService {
	return &movieService{
		repo: repo,
		log:  log.With(zap.String("service", "movie")),
		now:  time.Now,
	}
}

func (s *movieService) CreateMovie(ctx context.Context, req *request.CreateMovieRequest) (*response.MovieResponse, error) {
	normalizeCreate(req)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create movie validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	now := s.now()
	movie := &entity.Movie{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:          req.Title,
		PublishingYear: req.PublishingYear,
		Poster:         req.Poster,
		UserEmail:      req.UserEmail,
	}

	if err := s.repo.Movie.Create(ctx, movie); err != nil {
		s.log.Error("Failed to create movie",
			zap.Error(err),
			zap.String("title", req.Title),
		)
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.log.Info("Movie created",
		zap.String("movie_id", movie.ID.String()),
		zap.String("title", movie.Title),
		zap.String("user_email", movie.UserEmail),
	)

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) UpdateMovie(ctx context.Context, req *request.UpdateMovieRequest) (*response.MovieResponse, error) {
	normalizeUpdate(req)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update movie validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(req.MovieID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, req.MovieID)
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find movie: %w", err)
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}

	movie.Title = req.Title
	movie.PublishingYear = req.PublishingYear
	movie.Poster = req.Poster
	movie.UpdatedAt = s.now()

	if err := s.repo.Movie.Update(ctx, movie); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, ErrMovieNotFound
		}
		s.log.Error("Failed to update movie",
			zap.Error(err),
			zap.String("movie_id", req.MovieID),
		)
		return nil, fmt.Errorf("update movie: %w", err)
	}

	s.log.Info("Movie updated",
		zap.String("movie_id", req.MovieID),
		zap.String("title", movie.Title),
	)

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) ListMovies(ctx context.Context, req *request.ListMoviesRequest) ([]response.MovieResponse, error) {
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	movies, err := s.repo.Movie.FindByUserEmail(ctx, req.UserEmail)
	if err != nil {
		s.log.Error("Failed to list movies",
			zap.Error(err),
			zap.String("user_email", req.UserEmail),
		)
		return nil, fmt.Errorf("list movies: %w", err)
	}

	s.log.Debug("Movies listed",
		zap.Int("count", len(movies)),
		zap.String("user_email", req.UserEmail),
	)

	return response.MoviesToResponse(movies), nil
}

func (s *movieService) GetMovieByID(ctx context.Context, req *request.GetMovieRequest) (*response.MovieResponse, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.MovieID))
	if err != nil {
		s.log.Warn("Invalid movie ID format",
			zap.String("movie_id", req.MovieID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, req.MovieID)
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get movie by ID",
			zap.Error(err),
			zap.String("movie_id", req.MovieID),
		)
		return nil, fmt.Errorf("get movie by id: %w", err)
	}
	if movie == nil {
		return nil, nil
	}

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func normalizeCreate(req *request.CreateMovieRequest) {
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	req.Title = strings.TrimSpace(req.Title)
	req.Poster = strings.TrimSpace(req.Poster)
	req.PublishingYear = strings.TrimSpace(req.PublishingYear)
}

func normalizeUpdate(req *request.UpdateMovieRequest) {
	req.MovieID = strings.TrimSpace(req.MovieID)
	req.Title = strings.TrimSpace(req.Title)
	req.Poster = strings.TrimSpace(req.Poster)
	req.PublishingYear = strings.TrimSpace(req.PublishingYear)
}
