// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package database

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/crowdanalyzer/internal/crowd"
	"github.com/tomtom215/crowdanalyzer/internal/locations"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// SeedLocations are the areas that receive an initial sensor fleet.
var SeedLocations = []string{
	"Hitech City",
	"Uppal",
	"Miyapur",
	"Ameerpet",
	"Dilsukhnagar",
	"Secunderabad",
	"Gachibowli",
}

// seedStatuses weights online three to one against warning and offline.
var seedStatuses = []models.SensorStatus{
	models.StatusOnline,
	models.StatusOnline,
	models.StatusOnline,
	models.StatusWarning,
	models.StatusOffline,
}

// PCG seed for the initial fleet. Fixed so every fresh database starts with
// the same sensors.
const (
	fleetSeed1 = 0x63726f7764
	fleetSeed2 = 0x73656e736f72
)

// Seed inserts the location catalog and initial sensor fleet. Each table is
// only seeded while empty, so repeated calls are no-ops.
func (db *DB) Seed(ctx context.Context) error {
	nLocations, err := db.count(ctx, "locations")
	if err != nil {
		return err
	}
	nSensors, err := db.count(ctx, "sensors")
	if err != nil {
		return err
	}
	if nLocations > 0 && nSensors > 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := db.now().UTC()
	if nLocations == 0 {
		for _, name := range locations.Catalog {
			l := &models.Location{ID: uuid.NewString(), Name: name, CreatedAt: now}
			if err := db.insertLocation(ctx, tx, l); err != nil {
				return fmt.Errorf("failed to seed location %s: %w", name, err)
			}
		}
	}

	var fleet []models.Sensor
	if nSensors == 0 {
		for _, s := range SeedFleet(rand.New(rand.NewPCG(fleetSeed1, fleetSeed2))) {
			s.LastUpdated = now
			if err := db.insertSensor(ctx, tx, &s); err != nil {
				return fmt.Errorf("failed to seed sensor %s: %w", s.ID, err)
			}
			fleet = append(fleet, s)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	logging.Info().
		Bool("locations", nLocations == 0).
		Int("sensors", len(fleet)).
		Msg("Database seeded")
	return nil
}

// SeedFleet generates two to four sensors for each seed location using r.
// LastUpdated is left zero.
func SeedFleet(r crowd.Rand) []models.Sensor {
	var fleet []models.Sensor
	for _, location := range SeedLocations {
		slug := crowd.Slug(location)
		count := int(math.Floor(r.Float64()*3)) + 2
		for i := 0; i < count; i++ {
			typ := models.SensorTypes[int(math.Floor(r.Float64()*float64(len(models.SensorTypes))))]
			s := models.Sensor{
				ID:       fmt.Sprintf("%s-%s-%d", slug, typ, i),
				Name:     fmt.Sprintf("%s %s Sensor %d", location, titleFirst(string(typ)), i+1),
				Location: location,
				Type:     typ,
				Status:   seedStatuses[int(math.Floor(r.Float64()*float64(len(seedStatuses))))],
				Battery:  int(math.Floor(r.Float64()*60)) + 40,
				Data:     seedReading(typ, r),
			}
			fleet = append(fleet, s)
		}
	}
	return fleet
}

func seedReading(typ models.SensorType, r crowd.Rand) *models.SensorData {
	draw := func(span, base float64) float64 {
		return math.Floor(r.Float64()*span) + base
	}
	switch typ {
	case models.SensorCrowd:
		return &models.SensorData{Value: draw(100, 0), Unit: "%"}
	case models.SensorTemperature:
		return &models.SensorData{Value: draw(15, 20), Unit: "°C"}
	case models.SensorHumidity:
		return &models.SensorData{Value: draw(60, 30), Unit: "%"}
	case models.SensorAirQuality:
		return &models.SensorData{Value: draw(100, 20), Unit: "AQI"}
	default:
		return nil
	}
}

// titleFirst upper-cases the first letter: "air-quality" becomes "Air-quality".
func titleFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
