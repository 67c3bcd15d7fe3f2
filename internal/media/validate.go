package media

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

// MaxFileSize is the largest accepted upload, 50 MiB.
const MaxFileSize int64 = 50 << 20

var acceptedTypes = map[string]domain.FileType{
	"image/jpeg":      domain.FileTypeImage,
	"image/png":       domain.FileTypeImage,
	"image/gif":       domain.FileTypeImage,
	"image/webp":      domain.FileTypeImage,
	"video/mp4":       domain.FileTypeVideo,
	"video/webm":      domain.FileTypeVideo,
	"video/quicktime": domain.FileTypeVideo,
	"application/pdf": domain.FileTypePDF,
}

// AcceptAttr is the value of the file input's accept attribute.
const AcceptAttr = "image/jpeg,image/png,image/gif,image/webp,video/mp4,video/webm,video/quicktime,application/pdf"

// ValidateFile checks the declared type and size of an upload and reports the kind of
// asset it is. It never touches the network.
func ValidateFile(contentType string, size int64) (domain.FileType, error) {
	ft, ok := acceptedTypes[normalizeType(contentType)]
	if !ok {
		return "", &domain.ValidationError{
			Field:   "file",
			Message: "Invalid file type. Please upload images, videos, or PDFs only.",
		}
	}
	if size > MaxFileSize {
		return "", TooLargeError()
	}
	if size <= 0 {
		return "", &domain.ValidationError{Field: "file", Message: "The selected file is empty."}
	}
	return ft, nil
}

// TooLargeError is the validation failure for files above MaxFileSize.
func TooLargeError() error {
	return &domain.ValidationError{
		Field:   "file",
		Message: fmt.Sprintf("File size must be less than %s", humanize.IBytes(uint64(MaxFileSize))),
	}
}

func normalizeType(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

// sniffLen matches the header size mimetype inspects by default.
const sniffLen = 3072

// DetectContentType sniffs the first bytes of r. The returned reader yields the full
// stream, including the bytes consumed for detection.
func DetectContentType(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]
	mt := mimetype.Detect(head)
	return normalizeType(mt.String()), io.MultiReader(bytes.NewReader(head), r), nil
}

// needsSniffing reports whether a declared type carries no information.
func needsSniffing(contentType string) bool {
	switch normalizeType(contentType) {
	case "", "application/octet-stream", "binary/octet-stream":
		return true
	}
	return false
}

// ObjectPath builds a collision-resistant object path:
// <slug>/<unix millis>-<10 random hex chars>.<ext>
func ObjectPath(slug, fileName, contentType string, now int64) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("%s/%d-%s%s", slug, now, random, extension(fileName, contentType))
}

func extension(fileName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) > 1 && isAlnum(ext[1:]) {
		return ext
	}
	if mt := mimetype.Lookup(normalizeType(contentType)); mt != nil {
		return mt.Extension()
	}
	return ""
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

var validate = validator.New()

// validationError translates the first failing field into a form message.
func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &domain.ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		if field == "file" {
			return &domain.ValidationError{Field: field, Message: "Please choose a file to upload."}
		}
		return &domain.ValidationError{Field: field, Message: fmt.Sprintf("Please enter a %s.", field)}
	case "max":
		return &domain.ValidationError{Field: field, Message: fmt.Sprintf("The %s must be at most %s characters.", field, fe.Param())}
	}
	return &domain.ValidationError{Field: field, Message: fmt.Sprintf("The %s is invalid.", field)}
}
