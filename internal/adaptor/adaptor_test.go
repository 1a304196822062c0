package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"movie-catalog/internal/dto/request"
	"movie-catalog/internal/dto/response"
	"movie-catalog/internal/form"
	"movie-catalog/internal/notify"
	"movie-catalog/internal/page"
	"movie-catalog/internal/upload"
	"movie-catalog/internal/usecase"
	"movie-catalog/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const duneID = "6f1c1f0e-8b52-4c57-9a55-3a3a0f3f7d11"

type fakeMovieService struct {
	movies  map[string]response.MovieResponse
	created []request.CreateMovieRequest
	updated []request.UpdateMovieRequest
	err     error
}

func newFakeMovieService() *fakeMovieService {
	return &fakeMovieService{movies: map[string]response.MovieResponse{
		duneID: {ID: duneID, Title: "Dune", PublishingYear: "2021", Poster: "https://x/y.jpg", UserEmail: "neo@example.com"},
	}}
}

func (f *fakeMovieService) CreateMovie(_ context.Context, req *request.CreateMovieRequest) (*response.MovieResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, *req)
	return &response.MovieResponse{ID: uuid.NewString(), Title: req.Title, UserEmail: req.UserEmail}, nil
}

func (f *fakeMovieService) UpdateMovie(_ context.Context, req *request.UpdateMovieRequest) (*response.MovieResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated = append(f.updated, *req)
	return &response.MovieResponse{ID: req.MovieID, Title: req.Title}, nil
}

func (f *fakeMovieService) ListMovies(_ context.Context, req *request.ListMoviesRequest) ([]response.MovieResponse, error) {
	out := []response.MovieResponse{}
	for _, m := range f.movies {
		if m.UserEmail == req.UserEmail {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovieService) GetMovieByID(_ context.Context, req *request.GetMovieRequest) (*response.MovieResponse, error) {
	if _, err := uuid.Parse(req.MovieID); err != nil {
		return nil, fmt.Errorf("%w: %s", usecase.ErrInvalidID, req.MovieID)
	}
	m, ok := f.movies[req.MovieID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

type stubUploader struct {
	url string
	err error
}

func (s stubUploader) Upload(context.Context, upload.File) (*upload.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &upload.Result{SecureURL: s.url}, nil
}

// signedIn stands in for the session middleware.
func signedIn(email string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if email != "" {
				r = r.WithContext(utils.SetUserContext(r.Context(), uuid.New(), email))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type envelope struct {
	Status        bool                  `json:"status"`
	Message       string                `json:"message"`
	Data          json.RawMessage       `json:"data"`
	Errors        map[string]string     `json:"errors"`
	Redirect      string                `json:"redirect"`
	Notifications []notify.Notification `json:"notifications"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

func newPageRouter(email string, movies *fakeMovieService, up upload.Uploader) http.Handler {
	log := zap.NewNop()
	pages := page.NewPages(movies, form.NewRegistry(log), up, page.ContextSessions{}, notify.NewRequestSink(log), log)
	h := NewPageHandler(pages, 1<<20, log)

	r := chi.NewRouter()
	r.Use(signedIn(email))
	r.Get("/movies", h.ListMovies)
	r.Get("/movies/create", h.CreateMovie)
	r.Get("/movies/{movieId}", h.EditMovie)
	r.Get("/drafts/{draftId}", h.GetDraft)
	r.Patch("/drafts/{draftId}", h.UpdateDraft)
	r.Delete("/drafts/{draftId}", h.CancelDraft)
	r.Post("/drafts/{draftId}/poster", h.DropPoster)
	r.Delete("/drafts/{draftId}/poster", h.RemovePoster)
	r.Post("/drafts/{draftId}/submit", h.SubmitDraft)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, ct := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
		hdr.Set("Content-Type", ct)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte("\x89PNG\r\n\x1a\n"))
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

func openDraft(t *testing.T, h http.Handler, path string) string {
	t.Helper()
	rec := do(t, h, http.MethodGet, path, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("open %s: status %d body %s", path, rec.Code, rec.Body.String())
	}
	var view page.FormView
	if err := json.Unmarshal(decode(t, rec).Data, &view); err != nil {
		t.Fatal(err)
	}
	return view.Draft.ID
}

func TestPagesRedirectAnonymous(t *testing.T) {
	h := newPageRouter("", newFakeMovieService(), stubUploader{})

	for _, path := range []string{"/movies", "/movies/create", "/movies/" + duneID} {
		rec := do(t, h, http.MethodGet, path, nil, "")
		env := decode(t, rec)
		if rec.Code != http.StatusOK || env.Redirect != "/" {
			t.Errorf("%s: expected redirect to /, got %d %+v", path, rec.Code, env)
		}
	}
}

func TestPageCreateFlow(t *testing.T) {
	movies := newFakeMovieService()
	h := newPageRouter("neo@example.com", movies, stubUploader{url: "https://host/abc.png "})

	id := openDraft(t, h, "/movies/create")

	rec := do(t, h, http.MethodPatch, "/drafts/"+id, bytes.NewBufferString(`{"title":"Arrival","publishingYear":"2016"}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: status %d body %s", rec.Code, rec.Body.String())
	}

	body, ct := multipartBody(t, map[string]string{"poster.png": "image/png"})
	rec = do(t, h, http.MethodPost, "/drafts/"+id+"/poster", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("drop: status %d body %s", rec.Code, rec.Body.String())
	}
	var view page.FormView
	json.Unmarshal(decode(t, rec).Data, &view)
	if view.Draft.PreviewImage == nil || *view.Draft.PreviewImage != "https://host/abc.png" {
		t.Errorf("expected trimmed preview, got %v", view.Draft.PreviewImage)
	}

	rec = do(t, h, http.MethodPost, "/drafts/"+id+"/submit", nil, "")
	env := decode(t, rec)
	if rec.Code != http.StatusOK || env.Redirect != "/movies" {
		t.Fatalf("submit: expected redirect, got %d %+v", rec.Code, env)
	}
	if len(env.Notifications) != 1 || env.Notifications[0].Message != page.MsgCreated {
		t.Errorf("expected created toast, got %+v", env.Notifications)
	}
	if len(movies.created) != 1 || movies.created[0].UserEmail != "neo@example.com" {
		t.Errorf("expected create for the session user, got %+v", movies.created)
	}

	rec = do(t, h, http.MethodGet, "/drafts/"+id, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected submitted draft gone, got %d", rec.Code)
	}
}

func TestPageDropErrors(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		uploader   stubUploader
		wantStatus int
		wantToast  string
	}{
		{"Not An Image", map[string]string{"notes.txt": "text/plain"}, stubUploader{url: "https://h/a.png"}, http.StatusUnsupportedMediaType, form.MsgImageOnly},
		{"Two Files", map[string]string{"a.png": "image/png", "b.png": "image/png"}, stubUploader{url: "https://h/a.png"}, http.StatusBadRequest, form.MsgImageOnly},
		{"Host Failure", map[string]string{"a.png": "image/png"}, stubUploader{err: &upload.UploadError{StatusCode: 500, Message: "boom"}}, http.StatusBadGateway, form.MsgUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newPageRouter("neo@example.com", newFakeMovieService(), tt.uploader)
			id := openDraft(t, h, "/movies/create")

			body, ct := multipartBody(t, tt.files)
			rec := do(t, h, http.MethodPost, "/drafts/"+id+"/poster", body, ct)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d body %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			env := decode(t, rec)
			if len(env.Notifications) != 1 || env.Notifications[0].Message != tt.wantToast {
				t.Errorf("expected toast %q, got %+v", tt.wantToast, env.Notifications)
			}
		})
	}
}

func TestPageSubmitInvalid(t *testing.T) {
	h := newPageRouter("neo@example.com", newFakeMovieService(), stubUploader{})
	id := openDraft(t, h, "/movies/create")

	rec := do(t, h, http.MethodPost, "/drafts/"+id+"/submit", nil, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	env := decode(t, rec)
	for _, field := range []string{form.FieldTitle, form.FieldPublishingYear, form.FieldPoster} {
		if env.Errors[field] == "" {
			t.Errorf("expected error for %s, got %v", field, env.Errors)
		}
	}
}

func TestPageEditAndCancel(t *testing.T) {
	movies := newFakeMovieService()
	h := newPageRouter("neo@example.com", movies, stubUploader{})

	rec := do(t, h, http.MethodGet, "/movies/not-a-uuid", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed id, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/movies/"+uuid.NewString(), nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing movie, got %d", rec.Code)
	}

	id := openDraft(t, h, "/movies/"+duneID)

	rec = do(t, h, http.MethodDelete, "/drafts/"+id+"/poster", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove poster: %d", rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/drafts/"+id, nil, "")
	if env := decode(t, rec); env.Redirect != "/movies" {
		t.Errorf("expected cancel to redirect, got %+v", env)
	}
	if len(movies.updated) != 0 {
		t.Error("expected cancel not to update")
	}
}

func TestPageSubmitRemoteError(t *testing.T) {
	movies := newFakeMovieService()
	h := newPageRouter("neo@example.com", movies, stubUploader{})
	id := openDraft(t, h, "/movies/"+duneID)
	movies.err = errors.New("connection reset")

	rec := do(t, h, http.MethodPost, "/drafts/"+id+"/submit", nil, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	env := decode(t, rec)
	if env.Message != "Internal server error" || strings.Contains(rec.Body.String(), "connection reset") {
		t.Errorf("expected internal details hidden, got %s", rec.Body.String())
	}
	if len(env.Notifications) != 1 || env.Notifications[0].Level != notify.LevelError {
		t.Errorf("expected an error toast, got %+v", env.Notifications)
	}
}

func newMovieRouter(email string, svc usecase.MovieService) http.Handler {
	h := NewMovieHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Use(signedIn(email))
	r.Get("/api/movies", h.ListMovies)
	r.Post("/api/movies", h.CreateMovie)
	r.Get("/api/movies/{id}", h.GetMovieByID)
	r.Put("/api/movies/{id}", h.UpdateMovie)
	return r
}

func TestMovieAPI(t *testing.T) {
	t.Run("List Own Movies", func(t *testing.T) {
		h := newMovieRouter("neo@example.com", newFakeMovieService())
		rec := do(t, h, http.MethodGet, "/api/movies?user_email=neo@example.com", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var movies []response.MovieResponse
		json.Unmarshal(decode(t, rec).Data, &movies)
		if len(movies) != 1 {
			t.Errorf("expected one movie, got %d", len(movies))
		}
	})

	t.Run("List Someone Else", func(t *testing.T) {
		h := newMovieRouter("neo@example.com", newFakeMovieService())
		rec := do(t, h, http.MethodGet, "/api/movies?user_email=trinity@example.com", nil, "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("Create Defaults To Caller", func(t *testing.T) {
		svc := newFakeMovieService()
		h := newMovieRouter("neo@example.com", svc)
		rec := do(t, h, http.MethodPost, "/api/movies", bytes.NewBufferString(`{"title":"Heat","publishingYear":"1995"}`), "application/json")
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body %s", rec.Code, rec.Body.String())
		}
		if svc.created[0].UserEmail != "neo@example.com" {
			t.Errorf("expected caller email, got %q", svc.created[0].UserEmail)
		}
	})

	t.Run("Create Normalizes Caller Email", func(t *testing.T) {
		svc := newFakeMovieService()
		h := newMovieRouter("neo@example.com", svc)
		rec := do(t, h, http.MethodPost, "/api/movies", bytes.NewBufferString(`{"userEmail":"NEO@Example.com","title":"Heat","publishingYear":"1995"}`), "application/json")
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body %s", rec.Code, rec.Body.String())
		}
		if got := svc.created[0].UserEmail; got != "neo@example.com" {
			t.Errorf("expected session email, got %q", got)
		}
	})

	t.Run("Create Validation Error", func(t *testing.T) {
		svc := newFakeMovieService()
		svc.err = fmt.Errorf("%w: Title is required", usecase.ErrValidation)
		h := newMovieRouter("neo@example.com", svc)
		rec := do(t, h, http.MethodPost, "/api/movies", bytes.NewBufferString(`{}`), "application/json")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Update Foreign Movie", func(t *testing.T) {
		h := newMovieRouter("trinity@example.com", newFakeMovieService())
		rec := do(t, h, http.MethodPut, "/api/movies/"+duneID, bytes.NewBufferString(`{"title":"x","publishingYear":"1"}`), "application/json")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Update Uses Path Id", func(t *testing.T) {
		svc := newFakeMovieService()
		h := newMovieRouter("neo@example.com", svc)
		rec := do(t, h, http.MethodPut, "/api/movies/"+duneID, bytes.NewBufferString(`{"movieId":"ignored","title":"Dune","publishingYear":"2021"}`), "application/json")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if svc.updated[0].MovieID != duneID {
			t.Errorf("expected path id, got %q", svc.updated[0].MovieID)
		}
	})
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{form.ErrNoFile, http.StatusBadRequest},
		{form.ErrNotImage, http.StatusUnsupportedMediaType},
		{form.ErrUploadInProgress, http.StatusConflict},
		{form.ErrDraftClosed, http.StatusGone},
		{fmt.Errorf("upload poster: %w", &upload.UploadError{Message: "x"}), http.StatusBadGateway},
		{&form.ValidationError{Fields: map[string]string{"title": "Title is required"}}, http.StatusUnprocessableEntity},
		{usecase.ErrMovieNotFound, http.StatusNotFound},
		{usecase.ErrInvalidLogin, http.StatusUnauthorized},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got, _ := errorStatus(tt.err); got != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, got)
		}
	}
}
