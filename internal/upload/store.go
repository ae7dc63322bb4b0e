// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tomtom215/crowdanalyzer/internal/config"
	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes = 100 * 1024 * 1024

// DefaultTimeout bounds one upload request when none is configured.
const DefaultTimeout = 10 * time.Minute

// sniffLen is how much of the file is read for content detection.
const sniffLen = 3072

// DefaultAllowedTypes is the MIME whitelist when none is configured.
var DefaultAllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"video/mp4",
	"video/quicktime",
	"video/webm",
}

var (
	// ErrInvalidType is returned when the content is not on the whitelist,
	// does not belong to the endpoint's kind, or disagrees with the
	// declared Content-Type.
	ErrInvalidType = errors.New("invalid file type")

	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = errors.New("empty file")
)

// Saved describes a stored upload.
type Saved struct {
	Path string
	Name string
	MIME string
	Size int64
}

// Store writes validated uploads to a directory.
type Store struct {
	dir      string
	maxBytes int64
	timeout  time.Duration
	allowed  []string
	now      func() time.Time
}

// NewStore creates the upload directory if needed.
func NewStore(cfg *config.UploadConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	allowed := cfg.AllowedTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}

	return &Store{dir: dir, maxBytes: maxBytes, timeout: timeout, allowed: allowed, now: time.Now}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// MaxBytes returns the file size limit.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Timeout returns the deadline applied to one upload request.
func (s *Store) Timeout() time.Duration {
	return s.timeout
}

// Save sniffs src, checks it against kind and the declared Content-Type,
// and writes it as <unix-millis>-<basename>. A declared type of
// application/octet-stream is treated as undeclared.
func (s *Store) Save(kind models.FileType, filename, declared string, src io.Reader) (*Saved, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyFile
	}
	head = head[:n]

	mtype, err := s.check(kind, declared, head)
	if err != nil {
		return nil, err
	}

	name := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + sanitizeName(filename)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	size, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), src))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	return &Saved{Path: path, Name: name, MIME: mtype, Size: size}, nil
}

// check returns the sniffed MIME type when it is allowed for kind.
func (s *Store) check(kind models.FileType, declared string, head []byte) (string, error) {
	detected := mimetype.Detect(head)

	allowed := ""
	for _, t := range s.allowed {
		if detected.Is(t) {
			allowed = t
			break
		}
	}
	if allowed == "" {
		return "", fmt.Errorf("%w: detected %s", ErrInvalidType, detected.String())
	}
	if family(allowed) != string(kind) {
		return "", fmt.Errorf("%w: %s not allowed for %s uploads", ErrInvalidType, allowed, kind)
	}

	base, _, _ := strings.Cut(declared, ";")
	base = strings.TrimSpace(base)
	if base != "" && base != "application/octet-stream" && family(base) != family(allowed) {
		return "", fmt.Errorf("%w: declared %s, detected %s", ErrInvalidType, base, allowed)
	}
	return allowed, nil
}

// family returns the MIME top-level type, for example "image".
func family(mime string) string {
	top, _, _ := strings.Cut(strings.ToLower(mime), "/")
	return top
}

// sanitizeName keeps the base name and replaces characters that are unsafe
// in a path or URL.
func sanitizeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
