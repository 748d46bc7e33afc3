// Package assets stores uploaded images locally or in an S3 bucket.
package assets

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/audit"
	"github.com/jonathan/sng-admin/internal/clock"
	"golang.org/x/text/unicode/norm"
)

// MaxBytes is the largest accepted decoded upload.
const MaxBytes = 6 * 1024 * 1024

var (
	dataURLPattern  = regexp.MustCompile(`^data:([^;]+);base64,([A-Za-z0-9+/=]+)$`)
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	extPattern      = regexp.MustCompile(`\.[^/.]+$`)
)

// allowedTypes maps accepted MIME types to file extensions.
var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/avif": "avif",
	"image/gif":  "gif",
}

// Errors returned to the client verbatim.
var (
	ErrMalformedDataURL = apperr.New(apperr.UploadRejected, "Некорректный формат dataUrl")
	ErrUnsupportedType  = apperr.New(apperr.UploadRejected, "Поддерживаются только JPG, PNG, WEBP, AVIF, GIF")
	ErrUndecodable      = apperr.New(apperr.UploadRejected, "Не удалось декодировать изображение")
	ErrEmpty            = apperr.New(apperr.UploadRejected, "Файл пустой")
	ErrTooLarge         = apperr.New(apperr.PayloadTooLarge, "Размер файла превышает 6MB")
)

// Asset describes a stored upload.
type Asset struct {
	ID      string
	URL     string
	Size    int
	Storage string
	Type    string
}

// Backend persists the bytes of one upload and returns its public URL.
type Backend interface {
	Name() string
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Service validates and stores image uploads. A nil backend means no
// writable destination exists in this runtime.
type Service struct {
	backend Backend
	audit   *audit.Logger
	clock   clock.Clock
	ids     clock.IDGenerator
	logger  *slog.Logger
}

// NewService creates an upload service.
func NewService(backend Backend, a *audit.Logger, clk clock.Clock, ids clock.IDGenerator, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if ids == nil {
		ids = clock.UUIDGenerator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{backend: backend, audit: a, clock: clk, ids: ids, logger: logger.With("component", "assets")}
}

// Upload decodes a base64 data URL and stores the image under a unique name.
func (s *Service) Upload(ctx context.Context, actor, filename, dataURL string) (*Asset, error) {
	match := dataURLPattern.FindStringSubmatch(dataURL)
	if match == nil {
		return nil, ErrMalformedDataURL
	}

	mimeType := strings.ToLower(match[1])
	ext, ok := allowedTypes[mimeType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	data, err := decodeBase64(match[2])
	if err != nil {
		return nil, apperr.Wrap(apperr.UploadRejected, ErrUndecodable.Message, err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}

	if s.backend == nil {
		return nil, apperr.New(apperr.BlobNotConfigured, "no upload backend in a serverless runtime")
	}

	name := s.uniqueName(filename, ext)
	url, err := s.backend.Put(ctx, name, mimeType, data)
	if err != nil {
		s.logger.ErrorContext(ctx, "upload failed", "backend", s.backend.Name(), "name", name, "error", err)
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{Actor: actor, Action: "upload", Resource: "assets", ID: name})

	return &Asset{
		ID:      name,
		URL:     url,
		Size:    len(data),
		Storage: s.backend.Name(),
		Type:    mimeType,
	}, nil
}

// uniqueName builds <unix-ms>-<8 id chars>-<sanitized base>.<ext>.
func (s *Service) uniqueName(filename, ext string) string {
	id := s.ids.New()
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%d-%s-%s.%s", s.clock.Now().UnixMilli(), id, sanitizeBaseName(filename), ext)
}

// sanitizeBaseName keeps an ASCII-safe, lower-case stem of filename.
func sanitizeBaseName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = extPattern.ReplaceAllString(base, "")
	safe := unsafeNameChars.ReplaceAllString(norm.NFKD.String(base), "-")
	safe = strings.ToLower(strings.Trim(safe, "-"))
	if safe == "" {
		return "image"
	}
	return safe
}

// decodeBase64 decodes standard base64 leniently: input ends at the first
// padding character, and a dangling final character carries no byte.
func decodeBase64(encoded string) ([]byte, error) {
	encoded, _, _ = strings.Cut(encoded, "=")
	if len(encoded)%4 == 1 {
		encoded = encoded[:len(encoded)-1]
	}
	return base64.RawStdEncoding.DecodeString(encoded)
}
