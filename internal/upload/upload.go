package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrTooLarge is returned when the file exceeds the size cap.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType is returned for file extensions outside the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Extensions accepted for upload. Everything else is rejected.
var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".txt":  {},
}

// Result describes a stored file.
type Result struct {
	URL       string `json:"fileUrl"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"size"`
}

// Service stores uploaded files on local disk under random names. The
// original filename never reaches the filesystem.
type Service struct {
	dir      string
	maxBytes int64
	baseURL  string
	log      *zerolog.Logger
}

// NewService creates an upload service rooted at dir.
func NewService(dir string, maxBytes int64, baseURL string, logger *zerolog.Logger) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Service{
		dir:      dir,
		maxBytes: maxBytes,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		log:      logger,
	}, nil
}

// Save validates and persists one uploaded file, returning its public URL.
func (s *Service) Save(file multipart.File, header *multipart.FileHeader) (*Result, error) {
	if header.Size > s.maxBytes {
		return nil, ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// header.Size is client-supplied; the actual byte count is rechecked.
	written, err := io.Copy(dst, io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return nil, ErrTooLarge
	}

	s.log.Info().Str("file", name).Int64("size", written).Msg("file uploaded")
	return &Result{
		URL:       s.baseURL + "/uploads/" + name,
		MimeType:  header.Header.Get("Content-Type"),
		SizeBytes: written,
	}, nil
}

// Dir returns the storage directory, for serving files statically.
func (s *Service) Dir() string {
	return s.dir
}
