package form

import (
	"fmt"
	"strings"

	"movie-catalog/internal/upload"

	"github.com/gabriel-vasile/mimetype"
)

const imagePrefix = "image/"

// CheckDrop picks the single file out of a drop. A batch of more than one
// file is rejected before any content is looked at.
func CheckDrop(files []upload.File) (upload.File, error) {
	switch {
	case len(files) == 0:
		return upload.File{}, ErrNoFile
	case len(files) > 1:
		return upload.File{}, ErrTooManyFiles
	}

	file := files[0]
	ok, err := IsImage(file)
	if err != nil {
		return upload.File{}, err
	}
	if !ok {
		return upload.File{}, ErrNotImage
	}
	return file, nil
}

// IsImage trusts a declared content type and only sniffs the bytes when
// the browser sent nothing useful.
func IsImage(file upload.File) (bool, error) {
	ct := strings.ToLower(strings.TrimSpace(file.ContentType))
	if ct != "" && ct != "application/octet-stream" {
		return strings.HasPrefix(ct, imagePrefix), nil
	}

	if file.Open == nil {
		return false, nil
	}
	src, err := file.Open()
	if err != nil {
		return false, fmt.Errorf("open dropped file: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return false, fmt.Errorf("detect content type: %w", err)
	}
	return strings.HasPrefix(mt.String(), imagePrefix), nil
}
