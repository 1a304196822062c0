package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"movie-catalog/internal/dto/request"
	"movie-catalog/internal/notify"
	"movie-catalog/internal/page"
	"movie-catalog/internal/upload"
	"movie-catalog/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipart bookkeeping on top of the file itself
const formOverhead = 1 << 20

// PageHandler serves the movie pages and the forms they open. Every answer
// uses the page envelope: redirects come back as 200 with a redirect field
// and toasts raised during the request ride along in notifications.
type PageHandler struct {
	pages     *page.Pages
	maxUpload int64
	log       *zap.Logger
}

func NewPageHandler(pages *page.Pages, maxUpload int64, log *zap.Logger) *PageHandler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &PageHandler{
		pages:     pages,
		maxUpload: maxUpload,
		log:       log.With(zap.String("handler", "page")),
	}
}

// ListMovies handles GET /movies
func (h *PageHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	ctx, col := notify.WithCollector(r.Context())
	h.write(w, h.pages.List(ctx), col, "list movies")
}

// CreateMovie handles GET /movies/create
func (h *PageHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx, col := notify.WithCollector(r.Context())
	h.write(w, h.pages.Create(ctx), col, "open create form")
}

// EditMovie handles GET /movies/{movieId}
func (h *PageHandler) EditMovie(w http.ResponseWriter, r *http.Request) {
	ctx, col := notify.WithCollector(r.Context())
	h.write(w, h.pages.Edit(ctx, chi.URLParam(r, "movieId")), col, "open edit form")
}

// GetDraft handles GET /drafts/{draftId}
func (h *PageHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, col := notify.WithCollector(r.Context())
	h.write(w, h.pages.Draft(ctx, chi.URLParam(r, "draftId")), col, "get draft")
}

// UpdateDraft handles PATCH /drafts/{draftId}
func (h *PageHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req request.DraftFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	ctx, col := notify.WithCollector(r.Context())
	h.write(w, h.pages.SetFields(ctx, chi.URLParam(r, "draftId"), &req), col, "update draft")
}

// CancelDraft handles DELETE /drafts/{draftId}
func (h *PageHandler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	ctx, col := notify.WithCollector(r.Context())
	h.write(w, h.pages.Cancel(ctx, chi.URLParam(r, "draftId")), col, "cancel draft")
}

// DropPoster handles POST /drafts/{draftId}/poster. The body is multipart
// and may carry several files, which the form then rejects as a batch.
func (h *PageHandler) DropPoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ResponseJSON(w, http.StatusRequestEntityTooLarge, false, "File is too large", nil, nil)
			return
		}
		utils.ResponseBadRequest(w, "Invalid multipart body", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	ctx, col := notify.WithCollector(r.Context())
	res := h.pages.Drop(ctx, chi.URLParam(r, "draftId"), droppedFiles(r))
	h.write(w, res, col, "drop poster")
}

// RemovePoster handles DELETE /drafts/{draftId}/poster
func (h *PageHandler) RemovePoster(w http.ResponseWriter, r *http.Request) {
	ctx, col := notify.WithCollector(r.Context())
	h.write(w, h.pages.RemoveImage(ctx, chi.URLParam(r, "draftId")), col, "remove poster")
}

// SubmitDraft handles POST /drafts/{draftId}/submit
func (h *PageHandler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	ctx, col := notify.WithCollector(r.Context())
	h.write(w, h.pages.Submit(ctx, chi.URLParam(r, "draftId")), col, "submit draft")
}

func (h *PageHandler) write(w http.ResponseWriter, res page.Result, col *notify.Collector, operation string) {
	resp := utils.Response{Data: res.Data}
	if notes := col.Drain(); len(notes) > 0 {
		resp.Notifications = notes
	}

	code := http.StatusOK
	switch res.Kind {
	case page.KindRender:
		resp.Status = true
		resp.Message = "success"

	case page.KindRedirect:
		resp.Status = true
		resp.Message = "redirect"
		resp.Redirect = res.To

	case page.KindInvalid:
		code = http.StatusUnprocessableEntity
		resp.Message = "Validation failed"
		resp.Errors = res.Errors

	default:
		code, resp.Message = errorStatus(res.Err)
		logServiceError(h.log, res.Err, operation, code)
	}

	utils.WriteResponse(w, code, resp)
}

// droppedFiles returns every file in the form, "file" fields first.
func droppedFiles(r *http.Request) []upload.File {
	if r.MultipartForm == nil {
		return nil
	}

	names := make([]string, 0, len(r.MultipartForm.File))
	for name := range r.MultipartForm.File {
		if name != "file" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{"file"}, names...)

	var files []upload.File
	for _, name := range names {
		for _, fh := range r.MultipartForm.File[name] {
			files = append(files, upload.FromMultipart(fh))
		}
	}
	return files
}
