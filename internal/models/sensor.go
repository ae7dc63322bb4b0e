// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package models

import "time"

// SensorType is one of the five fixed sensor categories.
type SensorType string

const (
	SensorCrowd       SensorType = "crowd"
	SensorTemperature SensorType = "temperature"
	SensorHumidity    SensorType = "humidity"
	SensorAirQuality  SensorType = "air-quality"
	SensorMotion      SensorType = "motion"
)

// SensorTypes lists every sensor type in display order.
var SensorTypes = []SensorType{
	SensorCrowd,
	SensorTemperature,
	SensorHumidity,
	SensorAirQuality,
	SensorMotion,
}

// Valid reports whether t is a known sensor type.
func (t SensorType) Valid() bool {
	for _, st := range SensorTypes {
		if st == t {
			return true
		}
	}
	return false
}

// SensorStatus is the reported health of a sensor.
type SensorStatus string

const (
	StatusOnline  SensorStatus = "online"
	StatusOffline SensorStatus = "offline"
	StatusWarning SensorStatus = "warning"
)

// Valid reports whether s is a known status.
func (s SensorStatus) Valid() bool {
	return s == StatusOnline || s == StatusOffline || s == StatusWarning
}

// SensorData is a sensor's last reading.
type SensorData struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Sensor is a named reading source at a location.
type Sensor struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Location    string       `json:"location"`
	Type        SensorType   `json:"type"`
	Status      SensorStatus `json:"status"`
	Battery     int          `json:"battery"`
	Data        *SensorData  `json:"data,omitempty"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// SensorFilter narrows GET /api/sensors. Empty fields match everything.
type SensorFilter struct {
	Location string
	Type     SensorType
	Status   SensorStatus
}

// CreateSensorRequest is the body of POST /api/sensors.
type CreateSensorRequest struct {
	Name     string      `json:"name" validate:"required,max=200"`
	Location string      `json:"location" validate:"required,max=200"`
	Type     SensorType  `json:"type" validate:"required,oneof=crowd temperature humidity air-quality motion"`
	Data     *SensorData `json:"data,omitempty"`
}

// UpdateSensorRequest is the body of PUT /api/sensors/{id}.
// Nil fields are left unchanged.
type UpdateSensorRequest struct {
	Name     *string       `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Location *string       `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	Type     *SensorType   `json:"type,omitempty" validate:"omitempty,oneof=crowd temperature humidity air-quality motion"`
	Status   *SensorStatus `json:"status,omitempty" validate:"omitempty,oneof=online offline warning"`
	Battery  *int          `json:"battery,omitempty" validate:"omitempty,min=0,max=100"`
	Data     *SensorData   `json:"data,omitempty"`
}
