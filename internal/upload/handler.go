// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package upload

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/crowdanalyzer/internal/auth"
	"github.com/tomtom215/crowdanalyzer/internal/crowd"
	"github.com/tomtom215/crowdanalyzer/internal/events"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/metrics"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

// DefaultLocation is recorded when the form carries no location.
const DefaultLocation = "Unknown"

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

// multipartOverhead is the body allowance on top of the file size limit for
// boundaries, part headers and form fields.
const multipartOverhead = 1 << 20

// Response messages.
const (
	MsgNoFile        = "No file uploaded"
	MsgInvalidType   = "Invalid file type"
	MsgFileTooLarge  = "File too large"
	MsgImageAnalyzed = "Image uploaded and analyzed successfully"
	MsgVideoAnalyzed = "Video uploaded and analyzed successfully"
)

// AnalysisStore persists analysis records.
type AnalysisStore interface {
	CreateAnalysis(ctx context.Context, a *models.Analysis) error
}

// globalRand draws from the goroutine-safe math/rand/v2 top-level source.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Handler serves the image and video upload endpoints.
type Handler struct {
	store     *Store
	analyses  AnalysisStore
	publisher events.Publisher
	rnd       crowd.Rand
}

// NewHandler creates upload handlers. publisher may be nil.
func NewHandler(store *Store, analyses AnalysisStore, publisher events.Publisher) *Handler {
	return &Handler{
		store:     store,
		analyses:  analyses,
		publisher: publisher,
		rnd:       globalRand{},
	}
}

// Image handles POST /api/upload/image.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.FileImage)
}

// Video handles POST /api/upload/video.
func (h *Handler) Video(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.FileVideo)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, kind models.FileType) {
	rw := response.New(w, r)
	ctx := r.Context()

	claims := auth.ClaimsFromContext(ctx)
	if claims == nil {
		rw.Unauthorized(auth.MsgTokenRequired)
		return
	}

	extendDeadlines(ctx, w, h.store.Timeout())

	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		metrics.RecordUpload(string(kind), false, 0)
		if isTooLarge(err) {
			rw.PayloadTooLarge(MsgFileTooLarge)
			return
		}
		rw.BadRequest(MsgNoFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.RecordUpload(string(kind), false, 0)
		rw.BadRequest(MsgNoFile)
		return
	}
	defer file.Close()
	if header.Size > h.store.MaxBytes() {
		metrics.RecordUpload(string(kind), false, header.Size)
		rw.PayloadTooLarge(MsgFileTooLarge)
		return
	}

	location := strings.TrimSpace(r.FormValue("location"))
	if location == "" {
		location = DefaultLocation
	}

	saved, err := h.store.Save(kind, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		metrics.RecordUpload(string(kind), false, header.Size)
		switch {
		case errors.Is(err, ErrEmptyFile):
			rw.BadRequest(MsgNoFile)
		case errors.Is(err, ErrInvalidType):
			logging.Ctx(ctx).Debug().Err(err).Str("filename", header.Filename).Msg("Upload rejected")
			rw.BadRequest(MsgInvalidType)
		default:
			logging.Ctx(ctx).Error().Err(err).Msg("Failed to store upload")
			rw.InternalError(fmt.Sprintf("Server error during %s upload", kind))
		}
		return
	}

	results, err := h.results(kind)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to build analysis results")
		rw.InternalError(fmt.Sprintf("Server error during %s upload", kind))
		return
	}

	analysis := &models.Analysis{
		UserID:   claims.ID,
		FileType: kind,
		FilePath: saved.Path,
		Location: location,
		Results:  results,
	}
	if err := h.analyses.CreateAnalysis(ctx, analysis); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to save analysis")
		_ = os.Remove(saved.Path)
		rw.DatabaseError(err)
		return
	}
	metrics.RecordUpload(string(kind), true, saved.Size)

	if h.publisher != nil {
		if err := h.publisher.Publish(events.TopicAnalysisCreated, location, analysis); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to publish analysis event")
		}
	}

	logging.Ctx(ctx).Info().
		Str("analysis_id", analysis.ID).
		Str("type", string(kind)).
		Str("mime", saved.MIME).
		Int64("bytes", saved.Size).
		Str("location", location).
		Msg("Upload analyzed")

	message := MsgImageAnalyzed
	if kind == models.FileVideo {
		message = MsgVideoAnalyzed
	}
	rw.Created(models.UploadResponse{Message: message, Analysis: analysis})
}

// results generates placeholder results for kind as a JSON object.
func (h *Handler) results(kind models.FileType) (map[string]interface{}, error) {
	var v interface{}
	if kind == models.FileVideo {
		v = crowd.VideoResults(h.rnd)
	} else {
		v = crowd.ImageResults(h.rnd)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// extendDeadlines replaces the server-wide read and write timeouts for one
// upload request. Writers that cannot set deadlines keep the server's.
func extendDeadlines(ctx context.Context, w http.ResponseWriter, timeout time.Duration) {
	rc := http.NewResponseController(w)
	deadline := time.Now().Add(timeout)
	if err := rc.SetReadDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.Ctx(ctx).Debug().Err(err).Msg("Failed to extend upload read deadline")
	}
	if err := rc.SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.Ctx(ctx).Debug().Err(err).Msg("Failed to extend upload write deadline")
	}
}
