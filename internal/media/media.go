// Package media validates and encodes user-supplied media files.
//
// Payloads are stored as self-contained data URLs so records round-trip
// through any store without side-channel blob storage. Constraint checks run
// at selection time, before any encoding work.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Kind identifies the media slot a file is being attached to.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Size limits per kind, in bytes.
const (
	MaxPhotoSize = 5 * 1024 * 1024
	MaxVideoSize = 30 * 1024 * 1024
	MaxAudioSize = 10 * 1024 * 1024
)

var (
	// ErrTooLarge is wrapped by ConstraintError for oversized files.
	ErrTooLarge = errors.New("file too large")
	// ErrWrongType is wrapped by ConstraintError for MIME mismatches.
	ErrWrongType = errors.New("unexpected file type")
	// ErrNotDataURL is returned when decoding a payload that is not a data URL.
	ErrNotDataURL = errors.New("not a data URL")
)

// ConstraintError reports a rejected file along with the offending size, so
// the user-facing message can name it.
type ConstraintError struct {
	Kind Kind
	Size int64
	Mime string
	Err  error
}

func (e *ConstraintError) Error() string {
	if errors.Is(e.Err, ErrTooLarge) {
		return fmt.Sprintf("%s too large (%.2fMB), max %dMB", e.Kind, float64(e.Size)/1024/1024, maxSize(e.Kind)/1024/1024)
	}
	return fmt.Sprintf("%s has unexpected type %q", e.Kind, e.Mime)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func maxSize(k Kind) int64 {
	switch k {
	case KindPhoto:
		return MaxPhotoSize
	case KindVideo:
		return MaxVideoSize
	default:
		return MaxAudioSize
	}
}

func mimePrefix(k Kind) string {
	switch k {
	case KindPhoto:
		return "image/"
	case KindVideo:
		return "video/"
	default:
		return "audio/"
	}
}

// Check validates raw file bytes against the size and MIME constraints for
// the given kind. The MIME type is sniffed from content, not the filename.
func Check(kind Kind, data []byte) error {
	if int64(len(data)) > maxSize(kind) {
		return &ConstraintError{Kind: kind, Size: int64(len(data)), Err: ErrTooLarge}
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, mimePrefix(kind)) {
		return &ConstraintError{Kind: kind, Size: int64(len(data)), Mime: mime, Err: ErrWrongType}
	}
	return nil
}

// Encode validates the bytes and returns a data URL payload.
func Encode(kind Kind, data []byte) (string, error) {
	if err := Check(kind, data); err != nil {
		return "", err
	}
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// EncodeFile reads the file at path, validates it, and returns a data URL.
func EncodeFile(kind Kind, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Encode(kind, data)
}

// Decode parses a data URL payload back into its MIME type and raw bytes.
func Decode(payload string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(payload, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, b64, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, ErrNotDataURL
	}
	mime = strings.TrimSuffix(meta, ";base64")
	data, err = base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", nil, fmt.Errorf("decoding payload: %w", err)
	}
	return mime, data, nil
}

// IsDataURL reports whether the payload looks like a data URL.
func IsDataURL(payload string) bool {
	return strings.HasPrefix(payload, "data:")
}
