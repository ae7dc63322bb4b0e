// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/auth"
	"github.com/tomtom215/crowdanalyzer/internal/authz"
	"github.com/tomtom215/crowdanalyzer/internal/config"
	"github.com/tomtom215/crowdanalyzer/internal/database"
	"github.com/tomtom215/crowdanalyzer/internal/live"
	"github.com/tomtom215/crowdanalyzer/internal/locations"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/upload"
	ws "github.com/tomtom215/crowdanalyzer/internal/websocket"
)

// fakeStore is an in-memory Store and auth.UserStore.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int
	pingErr   error
	users     map[string]*models.User
	sensors   map[string]models.Sensor
	locations []models.Location
	analyses  []models.Analysis

	sensorListCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]*models.User),
		sensors: make(map[string]models.Sensor),
	}
}

func (s *fakeStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingErr
}

func (s *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return database.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = s.id("user")
	}
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeStore) GetUserByProvider(context.Context, string, string) (*models.User, error) {
	return nil, database.ErrNotFound
}

func (s *fakeStore) LinkProvider(context.Context, string, string, string) error {
	return nil
}

func (s *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *fakeStore) UpdateUser(_ context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	copied := *u
	return &copied, nil
}

func (s *fakeStore) ListSensors(_ context.Context, filter models.SensorFilter) ([]models.Sensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sensorListCalls++
	out := make([]models.Sensor, 0)
	for _, sensor := range s.sensors {
		if filter.Location != "" && sensor.Location != filter.Location {
			continue
		}
		if filter.Type != "" && sensor.Type != filter.Type {
			continue
		}
		if filter.Status != "" && sensor.Status != filter.Status {
			continue
		}
		out = append(out, sensor)
	}
	return out, nil
}

func (s *fakeStore) CreateSensor(_ context.Context, req models.CreateSensorRequest) (*models.Sensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sensor := models.Sensor{
		ID:          s.id("sensor"),
		Name:        req.Name,
		Location:    req.Location,
		Type:        req.Type,
		Status:      models.StatusOnline,
		Battery:     100,
		Data:        req.Data,
		LastUpdated: time.Now(),
	}
	s.sensors[sensor.ID] = sensor
	return &sensor, nil
}

func (s *fakeStore) UpdateSensor(_ context.Context, id string, req models.UpdateSensorRequest) (*models.Sensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sensor, ok := s.sensors[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if req.Name != nil {
		sensor.Name = *req.Name
	}
	if req.Status != nil {
		sensor.Status = *req.Status
	}
	if req.Battery != nil {
		sensor.Battery = *req.Battery
	}
	s.sensors[id] = sensor
	return &sensor, nil
}

func (s *fakeStore) DeleteSensor(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sensors[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.sensors, id)
	return nil
}

func (s *fakeStore) ListLocations(_ context.Context, search string) ([]models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Location, 0)
	for _, l := range s.locations {
		if search == "" || strings.Contains(strings.ToLower(l.Name), strings.ToLower(search)) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) GetLocationByName(_ context.Context, name string) (*models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.locations {
		if l.Name == name {
			l := l
			return &l, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) CreateLocation(_ context.Context, req models.CreateLocationRequest) (*models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.locations {
		if l.Name == req.Name {
			return nil, database.ErrConflict
		}
	}
	l := models.Location{ID: s.id("location"), Name: req.Name, Coordinates: req.Coordinates, CreatedAt: time.Now()}
	s.locations = append(s.locations, l)
	return &l, nil
}

func (s *fakeStore) CreateAnalysis(_ context.Context, a *models.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id("analysis")
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	s.analyses = append(s.analyses, *a)
	return nil
}

func (s *fakeStore) ListAnalyses(_ context.Context, userID string, filter models.AnalysisFilter) ([]models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Analysis, 0)
	for _, a := range s.analyses {
		if a.UserID != userID {
			continue
		}
		if filter.Type != "" && a.FileType != filter.Type {
			continue
		}
		if filter.Location != "" && a.Location != filter.Location {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// fakePrefs is an in-memory Preferences.
type fakePrefs struct {
	mu    sync.Mutex
	prefs map[string]models.LocationPreferences
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{prefs: make(map[string]models.LocationPreferences)}
}

func (p *fakePrefs) load(userID string) models.LocationPreferences {
	prefs, ok := p.prefs[userID]
	if !ok {
		prefs = models.LocationPreferences{Bookmarks: []string{}, Recents: []string{}}
	}
	return prefs
}

func (p *fakePrefs) Get(_ context.Context, userID string) (models.LocationPreferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(userID), nil
}

func (p *fakePrefs) SetCurrent(_ context.Context, userID, name string) (models.LocationPreferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefs := p.load(userID)
	prefs.Current = name
	prefs.Recents = append([]string{name}, prefs.Recents...)
	p.prefs[userID] = prefs
	return prefs, nil
}

func (p *fakePrefs) AddRecent(_ context.Context, userID, name string) (models.LocationPreferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefs := p.load(userID)
	prefs.Recents = append([]string{name}, prefs.Recents...)
	p.prefs[userID] = prefs
	return prefs, nil
}

func (p *fakePrefs) ClearRecents(_ context.Context, userID string) (models.LocationPreferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefs := p.load(userID)
	prefs.Recents = []string{}
	p.prefs[userID] = prefs
	return prefs, nil
}

func (p *fakePrefs) ToggleBookmark(_ context.Context, userID, name string) (bool, models.LocationPreferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefs := p.load(userID)
	for i, b := range prefs.Bookmarks {
		if b == name {
			prefs.Bookmarks = append(prefs.Bookmarks[:i], prefs.Bookmarks[i+1:]...)
			p.prefs[userID] = prefs
			return false, prefs, nil
		}
	}
	prefs.Bookmarks = append(prefs.Bookmarks, name)
	p.prefs[userID] = prefs
	return true, prefs, nil
}

// recordingPublisher captures published events.
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

func (p *recordingPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}
	return n
}

// testServer is a fully wired router over in-memory collaborators.
type testServer struct {
	t         *testing.T
	handler   *Handler
	http      http.Handler
	store     *fakeStore
	prefs     *fakePrefs
	publisher *recordingPublisher
	auth      *auth.Service
	tracker   *live.Tracker
	feed      *live.Feed
}

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "development", FrontendURL: "http://dashboard.test"},
		Security: config.SecurityConfig{
			JWTSecret:   "test-secret-that-is-long-enough-for-hs256",
			TokenTTL:    time.Hour,
			BcryptCost:  4,
			CORSOrigins: []string{"http://dashboard.test"},
		},
		Upload: config.UploadConfig{Dir: t.TempDir()},
	}
	for _, m := range mutate {
		m(cfg)
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer(time.Minute)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)

	uploadStore, err := upload.NewStore(&cfg.Upload)
	if err != nil {
		t.Fatalf("upload.NewStore() error = %v", err)
	}

	store := newFakeStore()
	store.locations = append(store.locations, models.Location{ID: "location-downtown", Name: "Downtown", CreatedAt: fixedNow})
	prefs := newFakePrefs()
	publisher := &recordingPublisher{}
	authService := auth.NewService(store, jwtManager, cfg.Security.BcryptCost)
	tracker := live.NewTracker(live.WithKnownLocations(locations.KnownFunc(store)))
	feed := live.NewFeed()

	h := NewHandler(Deps{
		Config:      cfg,
		Store:       store,
		Auth:        authService,
		Providers:   auth.NewProviders(cfg.OAuth),
		Preferences: prefs,
		Publisher:   publisher,
		Hub:         ws.NewHub(),
		Sessions:    live.NewRegistry(tracker),
		Tracker:     tracker,
		Feed:        feed,
	})
	h.now = func() time.Time { return fixedNow }
	t.Cleanup(h.Close)

	uploads := upload.NewHandler(uploadStore, store, publisher)
	router := NewRouter(h, uploads, auth.NewMiddleware(jwtManager), authz.NewMiddleware(enforcer))

	return &testServer{
		t:         t,
		handler:   h,
		http:      router.SetupChi(),
		store:     store,
		prefs:     prefs,
		publisher: publisher,
		auth:      authService,
		tracker:   tracker,
		feed:      feed,
	}
}

// tokenFor stores a user with role and returns a signed token for it.
func (s *testServer) tokenFor(email string, role models.Role) (string, *models.User) {
	s.t.Helper()
	u := &models.User{Name: "Test " + string(role), Email: email, Role: role, IsActive: true}
	if err := s.store.CreateUser(context.Background(), u); err != nil {
		s.t.Fatalf("CreateUser() error = %v", err)
	}
	token, err := s.auth.JWT().GenerateToken(u)
	if err != nil {
		s.t.Fatalf("GenerateToken() error = %v", err)
	}
	return token, u
}

// do sends a request through the router. body is JSON-encoded when non-nil.
func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("json.Marshal() error = %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.http.ServeHTTP(w, req)
	return w
}

// envelope mirrors response.Envelope with a raw data field.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, w.Body.String())
	}
	if data != nil {
		if len(env.Data) == 0 {
			t.Fatalf("envelope has no data: %s", w.Body.String())
		}
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, w, nil)
	if env.Error == nil {
		t.Fatalf("expected error envelope, got %s", w.Body.String())
	}
	return env.Error.Message
}

var errPingFailed = errors.New("connection refused")
