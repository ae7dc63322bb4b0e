// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/crowdanalyzer/internal/auth"
	"github.com/tomtom215/crowdanalyzer/internal/config"
	"github.com/tomtom215/crowdanalyzer/internal/events"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0}, 64)...)
	mp4Bytes  = append([]byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"), bytes.Repeat([]byte{0}, 64)...)
	textBytes = []byte("just some plain text, definitely not media")
)

type memoryAnalyses struct {
	mu    sync.Mutex
	saved []*models.Analysis
	err   error
}

func (m *memoryAnalyses) CreateAnalysis(_ context.Context, a *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	a.ID = "analysis-1"
	m.saved = append(m.saved, a)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(topic, _ string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

var _ events.Publisher = (*recordingPublisher)(nil)

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	s, err := NewStore(&config.UploadConfig{Dir: filepath.Join(t.TempDir(), "uploads"), MaxBytes: maxBytes})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.now = func() time.Time { return time.UnixMilli(1760443200000) }
	return s
}

// multipartBody builds a form with an optional file part and location.
func multipartBody(t *testing.T, filename, contentType string, content []byte, location string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if location != "" {
		if err := mw.WriteField("location", location); err != nil {
			t.Fatal(err)
		}
	}
	if content != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, h http.HandlerFunc, body *bytes.Buffer, contentType string, withClaims bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)
	if withClaims {
		req = req.WithContext(auth.ContextWithClaims(req.Context(), &auth.Claims{ID: "user-1", Role: models.RoleUser}))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (response.Envelope, models.UploadResponse) {
	t.Helper()
	var env struct {
		response.Envelope
		Data models.UploadResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return env.Envelope, env.Data
}

func TestHandler_ImageUpload(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, 0)
	analyses := &memoryAnalyses{}
	pub := &recordingPublisher{}
	h := NewHandler(store, analyses, pub)

	body, ct := multipartBody(t, "../../crowd.png", "image/png", pngBytes, "Uppal")
	rec := doUpload(t, h.Image, body, ct, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	_, data := decodeEnvelope(t, rec)
	if data.Message != MsgImageAnalyzed {
		t.Errorf("message = %q", data.Message)
	}
	a := data.Analysis
	if a == nil || a.Location != "Uppal" || a.FileType != models.FileImage || a.UserID != "user-1" {
		t.Fatalf("analysis = %+v", a)
	}
	density, ok := a.Results["density"].(float64)
	if !ok || density < 50 || density > 79 {
		t.Errorf("density = %v", a.Results["density"])
	}

	want := filepath.Join(store.Dir(), "1760443200000-crowd.png")
	if a.FilePath != want {
		t.Errorf("FilePath = %q, want %q", a.FilePath, want)
	}
	stored, err := os.ReadFile(want)
	if err != nil || !bytes.Equal(stored, pngBytes) {
		t.Errorf("stored file mismatch: %v", err)
	}
	if len(pub.topics) != 1 || pub.topics[0] != events.TopicAnalysisCreated {
		t.Errorf("published = %v", pub.topics)
	}
}

func TestHandler_VideoUpload(t *testing.T) {
	t.Parallel()

	h := NewHandler(newTestStore(t, 0), &memoryAnalyses{}, nil)
	body, ct := multipartBody(t, "clip.mp4", "video/mp4", mp4Bytes, "")
	rec := doUpload(t, h.Video, body, ct, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	_, data := decodeEnvelope(t, rec)
	if data.Message != MsgVideoAnalyzed || data.Analysis.Location != DefaultLocation {
		t.Errorf("response = %+v", data)
	}
	if data.Analysis.Results["peakTime"] != "00:01:45" {
		t.Errorf("results = %v", data.Analysis.Results)
	}
}

func TestHandler_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		video    bool
		filename string
		declared string
		content  []byte
		claims   bool
		maxBytes int64
		want     int
		wantMsg  string
	}{
		{"unauthenticated", false, "a.png", "image/png", pngBytes, false, 0, http.StatusUnauthorized, auth.MsgTokenRequired},
		{"no file", false, "", "", nil, true, 0, http.StatusBadRequest, MsgNoFile},
		{"empty file", false, "a.png", "image/png", []byte{}, true, 0, http.StatusBadRequest, MsgNoFile},
		{"plain text", false, "a.png", "image/png", textBytes, true, 0, http.StatusBadRequest, MsgInvalidType},
		{"image on video endpoint", true, "a.png", "image/png", pngBytes, true, 0, http.StatusBadRequest, MsgInvalidType},
		{"video on image endpoint", false, "a.mp4", "video/mp4", mp4Bytes, true, 0, http.StatusBadRequest, MsgInvalidType},
		{"declared family mismatch", false, "a.jpg", "video/mp4", jpegBytes, true, 0, http.StatusBadRequest, MsgInvalidType},
		{"too large", false, "a.png", "image/png", bytes.Repeat(pngBytes, 100), true, 1024, http.StatusRequestEntityTooLarge, MsgFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			analyses := &memoryAnalyses{}
			h := NewHandler(newTestStore(t, tt.maxBytes), analyses, nil)
			handler := h.Image
			if tt.video {
				handler = h.Video
			}

			body, ct := multipartBody(t, tt.filename, tt.declared, tt.content, "Uppal")
			rec := doUpload(t, handler, body, ct, tt.claims)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			env, _ := decodeEnvelope(t, rec)
			if env.Success || env.Error == nil || env.Error.Message != tt.wantMsg {
				t.Errorf("error = %+v, want %q", env.Error, tt.wantMsg)
			}
			if len(analyses.saved) != 0 {
				t.Error("analysis recorded for rejected upload")
			}
		})
	}
}

func TestHandler_SizeLimit(t *testing.T) {
	t.Parallel()

	const limit = 4096
	exact := append(append([]byte(nil), pngBytes...), bytes.Repeat([]byte{0}, limit-len(pngBytes))...)
	tests := []struct {
		name    string
		content []byte
		want    int
	}{
		{"exactly the limit", exact, http.StatusCreated},
		{"one byte over", append(exact, 0), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewHandler(newTestStore(t, limit), &memoryAnalyses{}, nil)
			body, ct := multipartBody(t, "a.png", "image/png", tt.content, "Uppal")
			rec := doUpload(t, h.Image, body, ct, true)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandler_OutlastsServerReadTimeout(t *testing.T) {
	t.Parallel()

	h := NewHandler(newTestStore(t, 0), &memoryAnalyses{}, nil)
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.ContextWithClaims(r.Context(), &auth.Claims{ID: "user-1", Role: models.RoleUser})
		h.Image(w, r.WithContext(ctx))
	}))
	srv.Config.ReadTimeout = 100 * time.Millisecond
	srv.Start()
	t.Cleanup(srv.Close)

	body, ct := multipartBody(t, "a.png", "image/png", pngBytes, "Uppal")
	raw := body.Bytes()
	pr, pw := io.Pipe()
	go func() {
		_, _ = pw.Write(raw[:len(raw)/2])
		time.Sleep(400 * time.Millisecond)
		_, _ = pw.Write(raw[len(raw)/2:])
		_ = pw.Close()
	}()

	req, err := http.NewRequest(http.MethodPost, srv.URL, pr)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", ct)
	req.ContentLength = int64(len(raw))
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("slow upload failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
}

func TestHandler_StoreFailureRemovesFile(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, 0)
	h := NewHandler(store, &memoryAnalyses{err: errors.New("db down")}, nil)
	body, ct := multipartBody(t, "a.png", "image/png", pngBytes, "")
	rec := doUpload(t, h.Image, body, ct, true)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir has %d files after failed insert", len(entries))
	}
}

func TestStore_Check(t *testing.T) {
	t.Parallel()
	s := newTestStore(t, 0)

	tests := []struct {
		name     string
		kind     models.FileType
		declared string
		head     []byte
		want     string
		wantErr  bool
	}{
		{"png", models.FileImage, "image/png", pngBytes, "image/png", false},
		{"jpeg undeclared", models.FileImage, "", jpegBytes, "image/jpeg", false},
		{"octet-stream treated as undeclared", models.FileImage, "application/octet-stream", jpegBytes, "image/jpeg", false},
		{"declared with params", models.FileImage, "image/jpeg; charset=binary", jpegBytes, "image/jpeg", false},
		{"mp4", models.FileVideo, "video/mp4", mp4Bytes, "video/mp4", false},
		{"text", models.FileImage, "", textBytes, "", true},
		{"wrong kind", models.FileVideo, "", pngBytes, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := s.check(tt.kind, tt.declared, tt.head)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidType) {
					t.Errorf("err = %v, want ErrInvalidType", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("check = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"photo.jpg":            "photo.jpg",
		"../../etc/passwd":     "passwd",
		`C:\Users\me\shot.png`: "shot.png",
		"my crowd (1).png":     "my_crowd__1_.png",
		"":                     "upload",
		"/":                    "upload",
	}
	for in, want := range tests {
		if got := sanitizeName(in); got != want {
			t.Errorf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewStore_Defaults(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	s, err := NewStore(&config.UploadConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("upload dir not created: %v", err)
	}
	if s.MaxBytes() != DefaultMaxBytes || s.Timeout() != DefaultTimeout {
		t.Errorf("MaxBytes = %d, Timeout = %v", s.MaxBytes(), s.Timeout())
	}
	if strings.Join(s.allowed, ",") != strings.Join(DefaultAllowedTypes, ",") {
		t.Errorf("allowed = %v", s.allowed)
	}
}
