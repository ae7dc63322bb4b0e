// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/crowdanalyzer/internal/database"
	"github.com/tomtom215/crowdanalyzer/internal/events"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

const msgSensorNotFound = "Sensor not found"

// Sensor change actions carried by sensor.updated events.
const (
	SensorCreated = "created"
	SensorUpdated = "updated"
	SensorDeleted = "deleted"
)

// SensorEvent is the payload of sensor.updated.
type SensorEvent struct {
	Action string         `json:"action"`
	ID     string         `json:"id"`
	Sensor *models.Sensor `json:"sensor,omitempty"`
}

// SensorsResponse is the payload of GET /api/sensors.
type SensorsResponse struct {
	Sensors []models.Sensor `json:"sensors"`
}

// SensorResponse is returned by sensor writes.
type SensorResponse struct {
	Message string         `json:"message"`
	Sensor  *models.Sensor `json:"sensor,omitempty"`
}

// ListSensors returns sensors filtered by location, type and status.
func (h *Handler) ListSensors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.SensorFilter{
		Location: strings.TrimSpace(q.Get("location")),
		Type:     models.SensorType(q.Get("type")),
		Status:   models.SensorStatus(q.Get("status")),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		response.New(w, r).BadRequest("Invalid sensor type")
		return
	}
	if filter.Status != "" && !filter.Status.Valid() {
		response.New(w, r).BadRequest("Invalid sensor status")
		return
	}

	sensors, err := h.store.ListSensors(r.Context(), filter)
	if err != nil {
		response.New(w, r).DatabaseError(err)
		return
	}
	response.New(w, r).Success(SensorsResponse{Sensors: sensors})
}

// CreateSensor adds a sensor (admin).
func (h *Handler) CreateSensor(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSensorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sensor, err := h.store.CreateSensor(r.Context(), req)
	if err != nil {
		response.New(w, r).DatabaseError(err)
		return
	}

	h.sensorChanged(r, SensorEvent{Action: SensorCreated, ID: sensor.ID, Sensor: sensor}, sensor.Location)
	response.New(w, r).Created(SensorResponse{Message: "Sensor added successfully", Sensor: sensor})
}

// UpdateSensor patches a sensor (admin).
func (h *Handler) UpdateSensor(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSensorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sensor, err := h.store.UpdateSensor(r.Context(), chi.URLParam(r, "id"), req)
	if errors.Is(err, database.ErrNotFound) {
		response.New(w, r).NotFound(msgSensorNotFound)
		return
	}
	if err != nil {
		response.New(w, r).DatabaseError(err)
		return
	}

	h.sensorChanged(r, SensorEvent{Action: SensorUpdated, ID: sensor.ID, Sensor: sensor}, sensor.Location)
	response.New(w, r).Success(SensorResponse{Message: "Sensor updated successfully", Sensor: sensor})
}

// DeleteSensor removes a sensor (admin).
func (h *Handler) DeleteSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.store.DeleteSensor(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		response.New(w, r).NotFound(msgSensorNotFound)
		return
	}
	if err != nil {
		response.New(w, r).DatabaseError(err)
		return
	}

	h.sensorChanged(r, SensorEvent{Action: SensorDeleted, ID: id}, "")
	response.New(w, r).Success(SensorResponse{Message: "Sensor deleted successfully"})
}

// sensorChanged publishes the change and drops cached dashboards, which
// embed the sensor list.
func (h *Handler) sensorChanged(r *http.Request, evt SensorEvent, location string) {
	h.dashboards.Clear()
	h.publish(r, events.TopicSensorUpdated, location, evt)
	logging.Ctx(r.Context()).Info().
		Str("sensor_id", evt.ID).
		Str("action", evt.Action).
		Msg("Sensor changed")
}
