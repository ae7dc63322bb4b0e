// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

func TestUsers_CreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := &models.User{Name: "Asha", Email: " Asha@Example.com ", PasswordHash: "hash", IsActive: true}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" || u.Role != models.RoleUser || u.Email != "asha@example.com" {
		t.Errorf("defaults not applied: %+v", u)
	}

	got, err := db.GetUserByEmail(ctx, "ASHA@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash" || !got.IsActive {
		t.Errorf("GetUserByEmail = %+v", got)
	}

	dup := &models.User{Name: "Other", Email: "asha@example.com"}
	if err := db.CreateUser(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateUser err = %v, want ErrConflict", err)
	}

	if _, err := db.GetUserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID(missing) err = %v, want ErrNotFound", err)
	}
}

func TestUsers_ProviderLink(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := &models.User{Name: "Ravi", Email: "ravi@example.com", IsActive: true}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := db.GetUserByProvider(ctx, models.ProviderGoogle, "g-123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("before link err = %v, want ErrNotFound", err)
	}
	if err := db.LinkProvider(ctx, u.ID, models.ProviderGoogle, "g-123"); err != nil {
		t.Fatalf("LinkProvider: %v", err)
	}
	got, err := db.GetUserByProvider(ctx, models.ProviderGoogle, "g-123")
	if err != nil {
		t.Fatalf("GetUserByProvider: %v", err)
	}
	if got.ID != u.ID || got.GoogleID != "g-123" {
		t.Errorf("GetUserByProvider = %+v", got)
	}

	if err := db.LinkProvider(ctx, "missing", models.ProviderLinkedIn, "l-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LinkProvider(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByProvider(ctx, "myspace", "x"); err == nil {
		t.Error("unknown provider should fail")
	}
}

func TestUsers_ListAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := &models.User{Name: "Meera", Email: "meera@example.com", PasswordHash: "secret", IsActive: true}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	users, err := db.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].PasswordHash != "" {
		t.Errorf("ListUsers = %+v", users)
	}

	admin := models.RoleAdmin
	inactive := false
	updated, err := db.UpdateUser(ctx, u.ID, models.UpdateUserRequest{Role: &admin, IsActive: &inactive})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Role != models.RoleAdmin || updated.IsActive {
		t.Errorf("UpdateUser = %+v", updated)
	}

	reloaded, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if reloaded.Role != models.RoleAdmin || reloaded.IsActive || reloaded.Name != "Meera" {
		t.Errorf("reloaded = %+v", reloaded)
	}

	if _, err := db.UpdateUser(ctx, "missing", models.UpdateUserRequest{Role: &admin}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUser(missing) err = %v, want ErrNotFound", err)
	}
}

func TestSensors_CRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.CreateSensor(ctx, models.CreateSensorRequest{
		Name:     "Uppal Crowd Sensor 1",
		Location: "Uppal",
		Type:     models.SensorCrowd,
	})
	if err != nil {
		t.Fatalf("CreateSensor: %v", err)
	}
	if created.Status != models.StatusOnline || created.Battery != 100 || created.Data != nil {
		t.Errorf("CreateSensor defaults = %+v", created)
	}
	if _, err := db.CreateSensor(ctx, models.CreateSensorRequest{
		Name:     "Miyapur Humidity Sensor 1",
		Location: "Miyapur",
		Type:     models.SensorHumidity,
		Data:     &models.SensorData{Value: 55, Unit: "%"},
	}); err != nil {
		t.Fatalf("CreateSensor: %v", err)
	}

	uppal, err := db.ListSensors(ctx, models.SensorFilter{Location: "Uppal"})
	if err != nil {
		t.Fatalf("ListSensors: %v", err)
	}
	if len(uppal) != 1 || uppal[0].ID != created.ID {
		t.Errorf("ListSensors(Uppal) = %+v", uppal)
	}
	if lower, _ := db.ListSensors(ctx, models.SensorFilter{Location: "uppal"}); len(lower) != 0 {
		t.Errorf("location filter should be exact, got %d", len(lower))
	}
	humid, _ := db.ListSensors(ctx, models.SensorFilter{Type: models.SensorHumidity})
	if len(humid) != 1 || humid[0].Data == nil || humid[0].Data.Value != 55 {
		t.Errorf("ListSensors(humidity) = %+v", humid)
	}

	later := testNow.Add(time.Hour)
	db.now = func() time.Time { return later }
	status := models.StatusWarning
	battery := 12
	updated, err := db.UpdateSensor(ctx, created.ID, models.UpdateSensorRequest{
		Status:  &status,
		Battery: &battery,
		Data:    &models.SensorData{Value: 81, Unit: "%"},
	})
	if err != nil {
		t.Fatalf("UpdateSensor: %v", err)
	}
	if updated.Name != created.Name || updated.Status != status || updated.Battery != 12 {
		t.Errorf("UpdateSensor = %+v", updated)
	}
	got, err := db.GetSensor(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSensor: %v", err)
	}
	if !got.LastUpdated.Equal(later) || got.Data == nil || got.Data.Value != 81 {
		t.Errorf("GetSensor = %+v", got)
	}
	online, _ := db.ListSensors(ctx, models.SensorFilter{Status: models.StatusOnline})
	if len(online) != 1 {
		t.Errorf("online sensors = %d, want 1", len(online))
	}

	if err := db.DeleteSensor(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSensor: %v", err)
	}
	if err := db.DeleteSensor(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteSensor err = %v, want ErrNotFound", err)
	}
	if _, err := db.UpdateSensor(ctx, created.ID, models.UpdateSensorRequest{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateSensor(deleted) err = %v, want ErrNotFound", err)
	}
}

func TestUpdateSensor_DeletedAfterRead(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.CreateSensor(ctx, models.CreateSensorRequest{Name: "North Gate", Location: "Uppal", Type: models.SensorCrowd})
	if err != nil {
		t.Fatalf("CreateSensor: %v", err)
	}

	// now runs between the read and the UPDATE statement.
	db.now = func() time.Time {
		if _, err := db.conn.ExecContext(ctx, `DELETE FROM sensors WHERE id = ?`, created.ID); err != nil {
			t.Errorf("delete: %v", err)
		}
		return time.Now()
	}
	name := "Renamed"
	if _, err := db.UpdateSensor(ctx, created.ID, models.UpdateSensorRequest{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateSensor err = %v, want ErrNotFound", err)
	}
}

func TestLocations_CreateAndSearch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, req := range []models.CreateLocationRequest{
		{Name: "Jubilee Hills", Coordinates: &models.Coordinates{Lat: 17.43, Lng: 78.41}},
		{Name: "Hitech City"},
		{Name: "Uppal"},
	} {
		if _, err := db.CreateLocation(ctx, req); err != nil {
			t.Fatalf("CreateLocation(%s): %v", req.Name, err)
		}
	}
	if _, err := db.CreateLocation(ctx, models.CreateLocationRequest{Name: "Uppal"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateLocation err = %v, want ErrConflict", err)
	}

	all, err := db.ListLocations(ctx, "")
	if err != nil {
		t.Fatalf("ListLocations: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListLocations() = %d, want 3", len(all))
	}

	tests := []struct {
		search string
		want   []string
	}{
		{"HILL", []string{"Jubilee Hills"}},
		{"i", []string{"Hitech City", "Jubilee Hills"}},
		{"pal", []string{"Uppal"}},
		{"nowhere", []string{}},
	}
	for _, tt := range tests {
		got, err := db.ListLocations(ctx, tt.search)
		if err != nil {
			t.Fatalf("ListLocations(%q): %v", tt.search, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("ListLocations(%q) = %d results, want %d", tt.search, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].Name != tt.want[i] {
				t.Errorf("ListLocations(%q)[%d] = %s, want %s", tt.search, i, got[i].Name, tt.want[i])
			}
		}
	}

	jh, err := db.GetLocationByName(ctx, "Jubilee Hills")
	if err != nil {
		t.Fatalf("GetLocationByName: %v", err)
	}
	if jh.Coordinates == nil || jh.Coordinates.Lat != 17.43 {
		t.Errorf("coordinates = %+v", jh.Coordinates)
	}
}

func TestAnalyses_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2026, 10, d, 9, 0, 0, 0, time.UTC) }
	records := []*models.Analysis{
		{UserID: "u1", FileType: models.FileImage, Location: "Uppal", Timestamp: day(1),
			Results: map[string]interface{}{"density": 42}},
		{UserID: "u1", FileType: models.FileVideo, Location: "Uppal", Timestamp: day(5)},
		{UserID: "u1", FileType: models.FileImage, Location: "Miyapur", Timestamp: day(10)},
		{UserID: "u2", FileType: models.FileImage, Location: "Uppal", Timestamp: day(3)},
	}
	for _, a := range records {
		if err := db.CreateAnalysis(ctx, a); err != nil {
			t.Fatalf("CreateAnalysis: %v", err)
		}
	}

	all, err := db.ListAnalyses(ctx, "u1", models.AnalysisFilter{})
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAnalyses(u1) = %d, want 3", len(all))
	}
	if !all[0].Timestamp.Equal(day(10)) || !all[2].Timestamp.Equal(day(1)) {
		t.Errorf("not sorted newest first: %v, %v", all[0].Timestamp, all[2].Timestamp)
	}
	if d, ok := all[2].Results["density"].(float64); !ok || d != 42 {
		t.Errorf("results = %v", all[2].Results)
	}

	tests := []struct {
		name   string
		filter models.AnalysisFilter
		want   int
	}{
		{"location", models.AnalysisFilter{Location: "Uppal"}, 2},
		{"type", models.AnalysisFilter{Type: models.FileImage}, 2},
		{"inclusive range", models.AnalysisFilter{StartDate: day(1), EndDate: day(5)}, 2},
		{"start only ignored", models.AnalysisFilter{StartDate: day(6)}, 3},
		{"combined", models.AnalysisFilter{Location: "Uppal", Type: models.FileVideo, StartDate: day(2), EndDate: day(9)}, 1},
	}
	for _, tt := range tests {
		got, err := db.ListAnalyses(ctx, "u1", tt.filter)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, len(got), tt.want)
		}
	}
}
