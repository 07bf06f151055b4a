// Package gallery implements the photo catalog operations: ingestion of new
// images, the photo lifecycle, categories, site settings and statistics.
package gallery

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/tangerinesoft/photo-service/internal/events"
	"github.com/tangerinesoft/photo-service/internal/objectstore"
	"github.com/tangerinesoft/photo-service/internal/storage"
)

const (
	DefaultCategory    = "uncategorized"
	DefaultContentType = "image/jpeg"
	defaultExtension   = "jpg"
)

var (
	ErrStorageWrite = errors.New("failed to store photo")
	ErrEmptyFile    = errors.New("empty file")
)

// Service is safe for concurrent use. It holds no per-request state.
type Service struct {
	catalog    storage.Storage
	store      objectstore.Store
	publisher  events.Publisher
	publicBase string
	validate   *validator.Validate
}

// New wires the service. publicBase is the URL prefix under which stored
// objects are publicly reachable, without a trailing slash.
func New(catalog storage.Storage, store objectstore.Store, publisher events.Publisher, publicBase string) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		catalog:    catalog,
		store:      store,
		publisher:  publisher,
		publicBase: strings.TrimRight(publicBase, "/"),
		validate:   validator.New(),
	}
}

var extensionPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,10}$`)

// Extension returns the part of filename after its last dot, or "jpg" when
// there is none or it is not a short alphanumeric suffix.
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return defaultExtension
	}
	ext := filename[i+1:]
	if !extensionPattern.MatchString(ext) {
		return defaultExtension
	}
	return ext
}

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest. Any non-letter starts a new word.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToTitle(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
