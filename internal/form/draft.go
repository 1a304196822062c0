// Package form holds the movie form as a server-side draft: field values,
// validation errors, the poster preview and the uploading/submitting flags.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"movie-catalog/internal/notify"
	"movie-catalog/internal/upload"
	"movie-catalog/internal/view"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgImageOnly      = "Only image files are allowed"
	MsgUploadFailed   = "Error uploading image"
	MsgUploadInFlight = "An image is already uploading"
)

type ImageState string

const (
	ImageEmpty     ImageState = "empty"
	ImageUploading ImageState = "uploading"
	ImageReady     ImageState = "ready"
)

// Record seeds a draft in edit mode.
type Record struct {
	ID             string
	Title          string
	PublishingYear string
	Poster         string
}

// SubmitFunc receives the validated values. It is called at most once per
// Submit and is awaited.
type SubmitFunc func(ctx context.Context, values Values) error

type Config struct {
	Owner    string
	Initial  *Record
	Schema   *Schema
	Uploader upload.Uploader
	Notifier notify.Sink
	Log      *zap.Logger
	Now      func() time.Time
}

type Draft struct {
	mu sync.Mutex

	id      uuid.UUID
	owner   string
	movieID string

	values     Values
	preview    *string
	uploading  bool
	submitting bool
	errors     map[string]string
	closed     bool
	lastActive time.Time

	// lifetime is cancelled by Close so in-flight uploads are abandoned
	lifetime context.Context
	cancel   context.CancelFunc

	schema   *Schema
	uploader upload.Uploader
	notifier notify.Sink
	log      *zap.Logger
	now      func() time.Time
}

// NewDraft creates a form instance. Without cfg.Initial every field starts
// empty and there is no preview.
func NewDraft(cfg Config) *Draft {
	if cfg.Schema == nil {
		cfg.Schema = MovieSchema()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	lifetime, cancel := context.WithCancel(context.Background())
	d := &Draft{
		id:         uuid.New(),
		owner:      cfg.Owner,
		errors:     make(map[string]string),
		lastActive: cfg.Now(),
		lifetime:   lifetime,
		cancel:     cancel,
		schema:     cfg.Schema,
		uploader:   cfg.Uploader,
		notifier:   cfg.Notifier,
		now:        cfg.Now,
	}
	d.log = cfg.Log.With(zap.String("draft_id", d.id.String()))

	if in := cfg.Initial; in != nil {
		d.movieID = in.ID
		d.values = Values{
			Title:          in.Title,
			PublishingYear: in.PublishingYear,
			Poster:         in.Poster,
		}
		if in.Poster != "" {
			p := in.Poster
			d.preview = &p
		}
	}

	return d
}

func (d *Draft) ID() uuid.UUID   { return d.id }
func (d *Draft) Owner() string   { return d.owner }
func (d *Draft) MovieID() string { return d.movieID }
func (d *Draft) IsEdit() bool    { return d.movieID != "" }

// Snapshot is a read-only copy of the draft for rendering.
type Snapshot struct {
	ID               string            `json:"id"`
	MovieID          string            `json:"movieId,omitempty"`
	Values           Values            `json:"values"`
	PreviewImage     *string           `json:"previewImage"`
	ImageState       ImageState        `json:"imageState"`
	IsUploading      bool              `json:"isUploading"`
	IsSubmitting     bool              `json:"isSubmitting"`
	ControlsDisabled bool              `json:"controlsDisabled"`
	Errors           map[string]string `json:"errors,omitempty"`
	Loader           *view.Loader      `json:"loader,omitempty"`
}

func (d *Draft) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Snapshot{
		ID:               d.id.String(),
		MovieID:          d.movieID,
		Values:           d.values,
		ImageState:       d.imageStateLocked(),
		IsUploading:      d.uploading,
		IsSubmitting:     d.submitting,
		ControlsDisabled: d.uploading || d.submitting,
		Loader:           view.LoaderFor(d.uploading),
	}
	if d.preview != nil {
		p := *d.preview
		s.PreviewImage = &p
	}
	if len(d.errors) > 0 {
		s.Errors = make(map[string]string, len(d.errors))
		for k, v := range d.errors {
			s.Errors[k] = v
		}
	}
	return s
}

func (d *Draft) imageStateLocked() ImageState {
	switch {
	case d.uploading:
		return ImageUploading
	case d.preview != nil:
		return ImageReady
	default:
		return ImageEmpty
	}
}

// SetField records a user edit of a text field and clears its error.
func (d *Draft) SetField(name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usableLocked(); err != nil {
		return err
	}
	if d.submitting {
		return ErrBusy
	}

	switch name {
	case FieldTitle:
		d.values.Title = value
	case FieldPublishingYear:
		d.values.PublishingYear = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	delete(d.errors, name)
	return nil
}

// OnDrop handles a drop or file-picker selection. Rejections notify the
// user and leave the draft untouched. A drop while an upload is in flight
// is ignored.
func (d *Draft) OnDrop(ctx context.Context, files []upload.File) error {
	d.mu.Lock()
	err := d.usableLocked()
	uploading := d.uploading
	submitting := d.submitting
	d.mu.Unlock()

	if err != nil {
		return err
	}
	if submitting {
		return ErrBusy
	}
	if uploading {
		d.notifyError(ctx, MsgUploadInFlight, notify.BottomCenter)
		return ErrUploadInProgress
	}

	file, err := CheckDrop(files)
	if err != nil {
		if errors.Is(err, ErrTooManyFiles) || errors.Is(err, ErrNotImage) {
			d.notifyError(ctx, MsgImageOnly, notify.BottomCenter)
		}
		d.log.Debug("Drop rejected", zap.Error(err), zap.Int("files", len(files)))
		return err
	}

	return d.UploadFile(ctx, file)
}

// UploadFile sends file to the image host and, on success, makes it the
// poster. A failure leaves the previous poster state as it was.
func (d *Draft) UploadFile(ctx context.Context, file upload.File) error {
	d.mu.Lock()
	if err := d.usableLocked(); err != nil {
		d.mu.Unlock()
		return err
	}
	if d.uploading {
		d.mu.Unlock()
		d.notifyError(ctx, MsgUploadInFlight, notify.BottomCenter)
		return ErrUploadInProgress
	}
	if d.submitting {
		d.mu.Unlock()
		return ErrBusy
	}
	if d.uploader == nil {
		d.mu.Unlock()
		return errors.New("draft has no uploader")
	}
	d.uploading = true
	d.mu.Unlock()

	upCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(d.lifetime, cancel)
	defer stop()
	defer cancel()

	res, err := d.uploader.Upload(upCtx, file)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Debug("Upload finished after draft closed", zap.Error(err))
		return ErrDraftClosed
	}
	d.uploading = false

	if err != nil {
		d.mu.Unlock()
		d.log.Warn("Poster upload failed", zap.Error(err), zap.String("file", file.Name))
		d.notifyError(ctx, MsgUploadFailed, notify.TopCenter)
		return fmt.Errorf("upload poster: %w", err)
	}

	d.values.Poster = res.SecureURL
	delete(d.errors, FieldPoster)
	preview := strings.TrimSpace(res.SecureURL)
	d.preview = &preview
	d.mu.Unlock()

	d.log.Info("Poster uploaded", zap.String("file", file.Name))
	return nil
}

// RemoveImage clears the preview and the poster value. Calling it again
// is a no-op.
func (d *Draft) RemoveImage() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usableLocked(); err != nil {
		return err
	}
	if d.uploading {
		return ErrUploadInProgress
	}
	if d.submitting {
		return ErrBusy
	}

	d.preview = nil
	d.values.Poster = ""
	return nil
}

// Submit validates the draft and hands the values to onSubmit exactly once.
// It is refused while an upload or another submit is in flight.
func (d *Draft) Submit(ctx context.Context, onSubmit SubmitFunc) error {
	d.mu.Lock()
	if err := d.usableLocked(); err != nil {
		d.mu.Unlock()
		return err
	}
	if d.uploading {
		d.mu.Unlock()
		return ErrUploadInProgress
	}
	if d.submitting {
		d.mu.Unlock()
		return ErrBusy
	}

	errs := d.schema.Validate(d.values.Map())
	d.errors = make(map[string]string, len(errs))
	if len(errs) > 0 {
		for name, msg := range errs {
			d.errors[name] = msg
		}
		d.mu.Unlock()
		return &ValidationError{Fields: errs}
	}

	d.submitting = true
	values := d.values
	d.mu.Unlock()

	err := onSubmit(ctx, values)

	d.mu.Lock()
	d.submitting = false
	d.mu.Unlock()

	return err
}

// Busy reports whether the submit and cancel controls are disabled.
func (d *Draft) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uploading || d.submitting
}

// Close discards the draft. Any upload still running is cancelled and its
// result dropped.
func (d *Draft) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	d.cancel()
}

func (d *Draft) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// IdleSince reports how long the draft has gone without being touched.
// A draft with work in flight is never idle.
func (d *Draft) IdleSince(now time.Time) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.uploading || d.submitting {
		return 0
	}
	return now.Sub(d.lastActive)
}

func (d *Draft) usableLocked() error {
	if d.closed {
		return ErrDraftClosed
	}
	d.lastActive = d.now()
	return nil
}

func (d *Draft) notifyError(ctx context.Context, msg string, pos notify.Position) {
	if d.notifier == nil {
		return
	}
	notify.Error(ctx, d.notifier, msg, pos)
}
