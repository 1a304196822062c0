package page

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"movie-catalog/internal/dto/request"
	"movie-catalog/internal/dto/response"
	"movie-catalog/internal/form"
	"movie-catalog/internal/notify"
	"movie-catalog/internal/upload"
	"movie-catalog/internal/usecase"

	"go.uber.org/zap"
)

const duneID = "6f1c1f0e-8b52-4c57-9a55-3a3a0f3f7d11"

type fakeMovies struct {
	mu      sync.Mutex
	calls   int
	created []*request.CreateMovieRequest
	updated []*request.UpdateMovieRequest
	movies  map[string]response.MovieResponse
	err     error
}

func newFakeMovies() *fakeMovies {
	return &fakeMovies{movies: map[string]response.MovieResponse{
		duneID: {ID: duneID, Title: "Dune", PublishingYear: "2021", Poster: "https://x/y.jpg", UserEmail: "neo@example.com"},
	}}
}

func (f *fakeMovies) CreateMovie(_ context.Context, req *request.CreateMovieRequest) (*response.MovieResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &response.MovieResponse{Title: req.Title}, nil
}

func (f *fakeMovies) UpdateMovie(_ context.Context, req *request.UpdateMovieRequest) (*response.MovieResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.updated = append(f.updated, req)
	return &response.MovieResponse{ID: req.MovieID, Title: req.Title}, nil
}

func (f *fakeMovies) ListMovies(_ context.Context, req *request.ListMoviesRequest) ([]response.MovieResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []response.MovieResponse
	for _, m := range f.movies {
		if m.UserEmail == req.UserEmail {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovies) GetMovieByID(_ context.Context, req *request.GetMovieRequest) (*response.MovieResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	m, ok := f.movies[req.MovieID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeMovies) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type staticSessions struct {
	session Session
	ok      bool
}

func (s staticSessions) Session(context.Context) (Session, bool) {
	return s.session, s.ok
}

type fakeUploader struct {
	url string
	err error
}

func (f fakeUploader) Upload(context.Context, upload.File) (*upload.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &upload.Result{SecureURL: f.url}, nil
}

type fixture struct {
	pages  *Pages
	movies *fakeMovies
	drafts *form.Registry
	sink   *notify.Collector
}

func newFixture(signedIn bool) *fixture {
	movies := newFakeMovies()
	drafts := form.NewRegistry(zap.NewNop())
	sink := &notify.Collector{}
	sessions := staticSessions{
		session: Session{Email: "neo@example.com"},
		ok:      signedIn,
	}
	return &fixture{
		pages:  NewPages(movies, drafts, fakeUploader{url: "https://host/new.png"}, sessions, sink, zap.NewNop()),
		movies: movies,
		drafts: drafts,
		sink:   sink,
	}
}

func pngFile() upload.File {
	return upload.FromBytes("poster.png", "image/png", []byte("\x89PNG\r\n\x1a\n"))
}

func draftID(t *testing.T, res Result) string {
	t.Helper()
	if res.Kind != KindRender {
		t.Fatalf("expected render, got %s (%v)", res.Kind, res.Err)
	}
	v, ok := res.Data.(FormView)
	if !ok {
		t.Fatalf("expected FormView, got %T", res.Data)
	}
	return v.Draft.ID
}

func TestGuardRedirectsWithoutSession(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	results := map[string]Result{
		"list":   f.pages.List(ctx),
		"create": f.pages.Create(ctx),
		"edit":   f.pages.Edit(ctx, duneID),
		"submit": f.pages.Submit(ctx, "6f1c1f0e-0000-0000-0000-000000000000"),
		"drop":   f.pages.Drop(ctx, "6f1c1f0e-0000-0000-0000-000000000000", []upload.File{pngFile()}),
	}

	for name, res := range results {
		if res.Kind != KindRedirect || res.To != RouteHome {
			t.Errorf("%s: expected redirect to %s, got %+v", name, RouteHome, res)
		}
	}
	if f.movies.Calls() != 0 {
		t.Errorf("expected no remote calls, got %d", f.movies.Calls())
	}
	if f.drafts.Len() != 0 {
		t.Errorf("expected no drafts opened, got %d", f.drafts.Len())
	}
}

func TestContextSessions(t *testing.T) {
	if _, ok := Guard(context.Background(), ContextSessions{}); ok {
		t.Error("expected empty context to have no session")
	}
	if _, ok := Guard(context.Background(), nil); ok {
		t.Error("expected nil provider to have no session")
	}
}

func TestList(t *testing.T) {
	t.Run("Renders Owned Movies", func(t *testing.T) {
		f := newFixture(true)
		f.movies.movies["other"] = response.MovieResponse{ID: "other", UserEmail: "trinity@example.com"}

		res := f.pages.List(context.Background())
		if res.Kind != KindRender {
			t.Fatalf("expected render, got %+v", res)
		}
		v := res.Data.(ListView)
		if len(v.Movies) != 1 || v.Movies[0].Title != "Dune" {
			t.Errorf("expected only Dune, got %+v", v.Movies)
		}
		if v.IsLoading || v.Loader != nil {
			t.Error("expected a finished list")
		}
	})

	t.Run("Empty List Is Not Nil", func(t *testing.T) {
		f := newFixture(true)
		f.movies.movies = map[string]response.MovieResponse{}

		v := f.pages.List(context.Background()).Data.(ListView)
		if v.Movies == nil {
			t.Error("expected an empty slice")
		}
	})

	t.Run("Remote Failure", func(t *testing.T) {
		f := newFixture(true)
		f.movies.err = errors.New("db down")

		if res := f.pages.List(context.Background()); res.Kind != KindFailed {
			t.Errorf("expected failed, got %+v", res)
		}
	})
}

func TestCreateFlow(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()

	id := draftID(t, f.pages.Create(ctx))

	title, year := "Arrival", "2016"
	f.pages.SetFields(ctx, id, &request.DraftFieldsRequest{Title: &title, PublishingYear: &year})

	res := f.pages.Drop(ctx, id, []upload.File{pngFile()})
	v := res.Data.(FormView)
	if v.Draft.PreviewImage == nil || *v.Draft.PreviewImage != "https://host/new.png" {
		t.Fatalf("expected uploaded preview, got %+v", v.Draft)
	}

	res = f.pages.Submit(ctx, id)
	if res.Kind != KindRedirect || res.To != RouteMovies {
		t.Fatalf("expected redirect to movies, got %+v", res)
	}

	if len(f.movies.created) != 1 {
		t.Fatalf("expected one create, got %d", len(f.movies.created))
	}
	got := f.movies.created[0]
	want := request.CreateMovieRequest{
		UserEmail:      "neo@example.com",
		Title:          "Arrival",
		Poster:         "https://host/new.png",
		PublishingYear: "2016",
	}
	if *got != want {
		t.Errorf("expected %+v, got %+v", want, *got)
	}

	toasts := f.sink.Drain()
	if len(toasts) != 1 || toasts[0].Message != MsgCreated || toasts[0].Position != notify.BottomCenter || toasts[0].Level != notify.LevelSuccess {
		t.Errorf("expected a created toast, got %+v", toasts)
	}
	if f.drafts.Len() != 0 {
		t.Error("expected draft discarded after submit")
	}
}

func TestCreateSubmitInvalid(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	id := draftID(t, f.pages.Create(ctx))

	res := f.pages.Submit(ctx, id)
	if res.Kind != KindInvalid {
		t.Fatalf("expected invalid, got %+v", res)
	}
	if len(res.Errors) != 3 {
		t.Errorf("expected three field errors, got %v", res.Errors)
	}
	if f.movies.Calls() != 0 {
		t.Error("expected no remote call")
	}
	if f.drafts.Len() != 1 {
		t.Error("expected draft kept")
	}
}

func TestCreateSubmitRemoteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Validation Message Shown", fmt.Errorf("%w: Title is required", usecase.ErrValidation), "validation failed: Title is required"},
		{"Internal Message Hidden", errors.New("pq: connection refused"), MsgInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true)
			ctx := context.Background()
			id := draftID(t, f.pages.Edit(ctx, duneID))
			f.movies.err = tt.err

			res := f.pages.Submit(ctx, id)
			if res.Kind != KindFailed || !errors.Is(res.Err, tt.err) {
				t.Fatalf("expected failed with remote error, got %+v", res)
			}

			toasts := f.sink.Drain()
			if len(toasts) != 1 || toasts[0].Message != tt.want || toasts[0].Level != notify.LevelError {
				t.Errorf("expected error toast %q, got %+v", tt.want, toasts)
			}

			v := res.Data.(FormView)
			if v.Draft.Values.Title != "Dune" {
				t.Error("expected values kept after a refused submit")
			}
			if f.drafts.Len() != 1 {
				t.Error("expected draft kept for retry")
			}
		})
	}
}

func TestEdit(t *testing.T) {
	t.Run("Seeds And Updates", func(t *testing.T) {
		f := newFixture(true)
		ctx := context.Background()

		res := f.pages.Edit(ctx, duneID)
		v := res.Data.(FormView)
		if v.Mode != ModeEdit || v.Draft.Values.Title != "Dune" || v.Draft.PreviewImage == nil {
			t.Fatalf("expected seeded edit form, got %+v", v)
		}

		title := "Dune: Part One"
		f.pages.SetFields(ctx, v.Draft.ID, &request.DraftFieldsRequest{Title: &title})

		res = f.pages.Submit(ctx, v.Draft.ID)
		if res.Kind != KindRedirect || res.To != RouteMovies {
			t.Fatalf("expected redirect, got %+v", res)
		}
		if len(f.movies.updated) != 1 {
			t.Fatalf("expected one update, got %d", len(f.movies.updated))
		}
		want := request.UpdateMovieRequest{
			MovieID:        duneID,
			Title:          "Dune: Part One",
			Poster:         "https://x/y.jpg",
			PublishingYear: "2021",
		}
		if *f.movies.updated[0] != want {
			t.Errorf("expected %+v, got %+v", want, *f.movies.updated[0])
		}
		if toasts := f.sink.Drain(); len(toasts) != 1 || toasts[0].Message != MsgUpdated {
			t.Errorf("expected updated toast, got %+v", toasts)
		}
	})

	t.Run("Missing Record", func(t *testing.T) {
		f := newFixture(true)
		res := f.pages.Edit(context.Background(), "6f1c1f0e-0000-0000-0000-000000000000")
		if res.Kind != KindFailed || !errors.Is(res.Err, usecase.ErrMovieNotFound) {
			t.Errorf("expected not found, got %+v", res)
		}
	})

	t.Run("Missing Id", func(t *testing.T) {
		f := newFixture(true)
		res := f.pages.Edit(context.Background(), " ")
		if res.Kind != KindFailed || !errors.Is(res.Err, usecase.ErrInvalidID) {
			t.Errorf("expected invalid id, got %+v", res)
		}
		if f.movies.Calls() != 0 {
			t.Error("expected no remote call without an id")
		}
	})

	t.Run("Other Owner", func(t *testing.T) {
		f := newFixture(true)
		m := f.movies.movies[duneID]
		m.UserEmail = "trinity@example.com"
		f.movies.movies[duneID] = m

		if res := f.pages.Edit(context.Background(), duneID); !errors.Is(res.Err, usecase.ErrMovieNotFound) {
			t.Errorf("expected not found for another owner's movie, got %+v", res)
		}
	})
}

func TestDropRejection(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	id := draftID(t, f.pages.Create(ctx))

	res := f.pages.Drop(ctx, id, []upload.File{upload.FromBytes("a.txt", "text/plain", []byte("hi"))})
	if res.Kind != KindFailed || !errors.Is(res.Err, form.ErrNotImage) {
		t.Fatalf("expected not image, got %+v", res)
	}
	if v := res.Data.(FormView); v.Draft.PreviewImage != nil {
		t.Error("expected preview untouched")
	}
	if toasts := f.sink.Drain(); len(toasts) != 1 || toasts[0].Message != form.MsgImageOnly {
		t.Errorf("expected image-only toast, got %+v", toasts)
	}
}

func TestRemoveImageAndCancel(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	id := draftID(t, f.pages.Edit(ctx, duneID))

	res := f.pages.RemoveImage(ctx, id)
	if v := res.Data.(FormView); v.Draft.PreviewImage != nil || v.Draft.Values.Poster != "" {
		t.Errorf("expected poster removed, got %+v", v.Draft)
	}

	res = f.pages.Cancel(ctx, id)
	if res.Kind != KindRedirect || res.To != RouteMovies {
		t.Fatalf("expected redirect, got %+v", res)
	}
	if res := f.pages.Draft(ctx, id); !errors.Is(res.Err, form.ErrDraftNotFound) {
		t.Errorf("expected cancelled draft gone, got %+v", res)
	}
	if f.movies.Calls() != 1 {
		t.Errorf("expected only the initial fetch, got %d calls", f.movies.Calls())
	}
}

func TestDraftsAreOwnerScoped(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	id := draftID(t, f.pages.Create(ctx))

	other := NewPages(f.movies, f.drafts, fakeUploader{}, staticSessions{
		session: Session{Email: "trinity@example.com"},
		ok:      true,
	}, f.sink, zap.NewNop())

	if res := other.Draft(ctx, id); !errors.Is(res.Err, form.ErrDraftNotFound) {
		t.Errorf("expected another session to be refused, got %+v", res)
	}
	if res := other.Submit(ctx, "not-a-uuid"); !errors.Is(res.Err, form.ErrDraftNotFound) {
		t.Errorf("expected malformed id to be not found, got %+v", res)
	}
}
