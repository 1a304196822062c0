// Package page holds the movie page controllers. Each operation checks the
// session first and returns a Result instead of navigating on its own.
package page

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"movie-catalog/internal/dto/request"
	"movie-catalog/internal/dto/response"
	"movie-catalog/internal/form"
	"movie-catalog/internal/notify"
	"movie-catalog/internal/upload"
	"movie-catalog/internal/usecase"
	"movie-catalog/internal/view"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgCreated       = "Movie created successfully"
	MsgUpdated       = "Movie updated successfully"
	MsgInternalError = "Internal server error"

	ModeCreate = "create"
	ModeEdit   = "edit"
)

// MovieClient is the remote procedure surface the pages call.
type MovieClient interface {
	CreateMovie(ctx context.Context, req *request.CreateMovieRequest) (*response.MovieResponse, error)
	UpdateMovie(ctx context.Context, req *request.UpdateMovieRequest) (*response.MovieResponse, error)
	ListMovies(ctx context.Context, req *request.ListMoviesRequest) ([]response.MovieResponse, error)
	GetMovieByID(ctx context.Context, req *request.GetMovieRequest) (*response.MovieResponse, error)
}

// ListView is rendered once the list has been fetched, so IsLoading is
// false and Loader is omitted. Both stay in the payload so a client can
// render the page shape it expects while its own request is pending.
type ListView struct {
	Movies    []response.MovieResponse `json:"movies"`
	IsLoading bool                     `json:"isLoading"`
	Loader    *view.Loader             `json:"loader,omitempty"`
}

type FormView struct {
	Mode  string        `json:"mode"`
	Draft form.Snapshot `json:"draft"`
}

type Pages struct {
	movies   MovieClient
	drafts   *form.Registry
	uploader upload.Uploader
	sessions SessionProvider
	notifier notify.Sink
	log      *zap.Logger
}

func NewPages(
	movies MovieClient,
	drafts *form.Registry,
	uploader upload.Uploader,
	sessions SessionProvider,
	notifier notify.Sink,
	log *zap.Logger,
) *Pages {
	return &Pages{
		movies:   movies,
		drafts:   drafts,
		uploader: uploader,
		sessions: sessions,
		notifier: notifier,
		log:      log.With(zap.String("component", "pages")),
	}
}

// List renders the movies owned by the signed-in user.
func (p *Pages) List(ctx context.Context) Result {
	s, ok := Guard(ctx, p.sessions)
	if !ok {
		return Redirect(RouteHome)
	}

	movies, err := p.movies.ListMovies(ctx, &request.ListMoviesRequest{UserEmail: s.Email})
	if err != nil {
		p.log.Error("Failed to list movies", zap.Error(err), zap.String("user_email", s.Email))
		return Failed(ListView{Movies: []response.MovieResponse{}}, err)
	}
	if movies == nil {
		movies = []response.MovieResponse{}
	}

	return Render(ListView{Movies: movies})
}

// Create opens an empty form.
func (p *Pages) Create(ctx context.Context) Result {
	s, ok := Guard(ctx, p.sessions)
	if !ok {
		return Redirect(RouteHome)
	}

	d := p.openDraft(s, nil)
	return Render(formView(d))
}

// Edit opens a form seeded with the movie identified by movieID.
func (p *Pages) Edit(ctx context.Context, movieID string) Result {
	s, ok := Guard(ctx, p.sessions)
	if !ok {
		return Redirect(RouteHome)
	}

	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return Failed(nil, fmt.Errorf("%w: movie id is required", usecase.ErrInvalidID))
	}

	movie, err := p.movies.GetMovieByID(ctx, &request.GetMovieRequest{MovieID: movieID})
	if err != nil {
		return Failed(nil, err)
	}
	// someone else's movie looks exactly like a missing one
	if movie == nil || movie.UserEmail != s.Email {
		return Failed(nil, usecase.ErrMovieNotFound)
	}

	d := p.openDraft(s, &form.Record{
		ID:             movie.ID,
		Title:          movie.Title,
		PublishingYear: movie.PublishingYear,
		Poster:         movie.Poster,
	})
	return Render(formView(d))
}

// Draft renders the current state of an open form.
func (p *Pages) Draft(ctx context.Context, draftID string) Result {
	d, res, ok := p.lookup(ctx, draftID)
	if !ok {
		return res
	}
	return Render(formView(d))
}

// SetFields applies typed text to an open form.
func (p *Pages) SetFields(ctx context.Context, draftID string, req *request.DraftFieldsRequest) Result {
	d, res, ok := p.lookup(ctx, draftID)
	if !ok {
		return res
	}

	if req.Title != nil {
		if err := d.SetField(form.FieldTitle, *req.Title); err != nil {
			return Failed(formView(d), err)
		}
	}
	if req.PublishingYear != nil {
		if err := d.SetField(form.FieldPublishingYear, *req.PublishingYear); err != nil {
			return Failed(formView(d), err)
		}
	}
	return Render(formView(d))
}

// Drop hands dropped or picked files to the form and waits for the upload.
func (p *Pages) Drop(ctx context.Context, draftID string, files []upload.File) Result {
	d, res, ok := p.lookup(ctx, draftID)
	if !ok {
		return res
	}

	if err := d.OnDrop(ctx, files); err != nil {
		return Failed(formView(d), err)
	}
	return Render(formView(d))
}

func (p *Pages) RemoveImage(ctx context.Context, draftID string) Result {
	d, res, ok := p.lookup(ctx, draftID)
	if !ok {
		return res
	}

	if err := d.RemoveImage(); err != nil {
		return Failed(formView(d), err)
	}
	return Render(formView(d))
}

// Cancel discards the form and returns to the list.
func (p *Pages) Cancel(ctx context.Context, draftID string) Result {
	d, res, ok := p.lookup(ctx, draftID)
	if !ok {
		return res
	}

	if d.Busy() {
		return Failed(formView(d), form.ErrBusy)
	}
	p.drafts.Discard(d.ID())
	return Redirect(RouteMovies)
}

// Submit validates the form and sends it to createMovie or updateMovie
// depending on how the form was opened.
func (p *Pages) Submit(ctx context.Context, draftID string) Result {
	d, res, ok := p.lookup(ctx, draftID)
	if !ok {
		return res
	}
	s, _ := Guard(ctx, p.sessions)

	var remoteErr error
	err := d.Submit(ctx, func(ctx context.Context, v form.Values) error {
		if d.IsEdit() {
			_, remoteErr = p.movies.UpdateMovie(ctx, &request.UpdateMovieRequest{
				MovieID:        d.MovieID(),
				Poster:         v.Poster,
				Title:          v.Title,
				PublishingYear: v.PublishingYear,
			})
		} else {
			_, remoteErr = p.movies.CreateMovie(ctx, &request.CreateMovieRequest{
				UserEmail:      s.Email,
				Title:          v.Title,
				Poster:         v.Poster,
				PublishingYear: v.PublishingYear,
			})
		}
		return remoteErr
	})

	var vErr *form.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &vErr):
		return Invalid(formView(d), vErr.Fields)
	case remoteErr != nil:
		p.log.Warn("Movie mutation failed",
			zap.Error(remoteErr),
			zap.String("draft_id", d.ID().String()),
			zap.Bool("edit", d.IsEdit()),
		)
		p.toast(ctx, notify.LevelError, mutationMessage(remoteErr))
		return Failed(formView(d), remoteErr)
	default:
		return Failed(formView(d), err)
	}

	msg := MsgCreated
	if d.IsEdit() {
		msg = MsgUpdated
	}
	p.toast(ctx, notify.LevelSuccess, msg)
	p.drafts.Discard(d.ID())

	return Redirect(RouteMovies)
}

func (p *Pages) openDraft(s Session, initial *form.Record) *form.Draft {
	d := form.NewDraft(form.Config{
		Owner:    s.Email,
		Initial:  initial,
		Uploader: p.uploader,
		Notifier: p.notifier,
		Log:      p.log,
	})
	p.drafts.Add(d)

	p.log.Debug("Draft opened",
		zap.String("draft_id", d.ID().String()),
		zap.Bool("edit", d.IsEdit()),
	)
	return d
}

// lookup runs the guard and finds the caller's draft. When ok is false the
// returned Result is the answer.
func (p *Pages) lookup(ctx context.Context, draftID string) (*form.Draft, Result, bool) {
	s, ok := Guard(ctx, p.sessions)
	if !ok {
		return nil, Redirect(RouteHome), false
	}

	id, err := uuid.Parse(strings.TrimSpace(draftID))
	if err != nil {
		return nil, Failed(nil, form.ErrDraftNotFound), false
	}

	d, err := p.drafts.Get(id, s.Email)
	if err != nil {
		return nil, Failed(nil, err), false
	}
	return d, Result{}, true
}

func (p *Pages) toast(ctx context.Context, level notify.Level, msg string) {
	if p.notifier == nil {
		return
	}
	if level == notify.LevelSuccess {
		notify.Success(ctx, p.notifier, msg, notify.BottomCenter)
		return
	}
	notify.Error(ctx, p.notifier, msg, notify.BottomCenter)
}

func formView(d *form.Draft) FormView {
	mode := ModeCreate
	if d.IsEdit() {
		mode = ModeEdit
	}
	return FormView{Mode: mode, Draft: d.Snapshot()}
}

// mutationMessage is what the user gets to read when the server refuses a
// create or update.
func mutationMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrMovieNotFound),
		errors.Is(err, usecase.ErrInvalidID):
		return err.Error()
	default:
		return MsgInternalError
	}
}
