// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

// Package response writes the JSON envelope shared by every API endpoint
// and middleware.
package response

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/crowdanalyzer/internal/logging"
)

// Envelope is the standardized response wrapper for all API endpoints.
type Envelope struct {
	// Success indicates whether the request was successful
	Success bool `json:"success"`

	// Data contains the response payload (omitted on error)
	Data interface{} `json:"data,omitempty"`

	// Error contains error details (omitted on success)
	Error *Error `json:"error,omitempty"`

	Meta *Meta `json:"meta,omitempty"`
}

// Error represents an error response.
type Error struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Meta contains response metadata.
type Meta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
}

// Error codes for API responses
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeDatabaseError      = "DATABASE_ERROR"
)

// Writer writes standardized API responses for one request.
type Writer struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// New creates a response writer. The request start time is taken from now.
func New(w http.ResponseWriter, r *http.Request) *Writer {
	return &Writer{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

func (rw *Writer) meta() *Meta {
	return &Meta{
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
		Timestamp:  time.Now().UTC(),
		DurationMs: time.Since(rw.startTime).Milliseconds(),
	}
}

// Success writes a 200 response with data.
func (rw *Writer) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, Envelope{Success: true, Data: data, Meta: rw.meta()})
}

// Created writes a 201 Created response.
func (rw *Writer) Created(data interface{}) {
	rw.writeJSON(http.StatusCreated, Envelope{Success: true, Data: data, Meta: rw.meta()})
}

// Error writes an error response with the given status code.
func (rw *Writer) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *Writer) ErrorWithDetails(statusCode int, code, message string, details interface{}) {
	meta := rw.meta()
	rw.writeJSON(statusCode, Envelope{
		Success: false,
		Error: &Error{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: meta.RequestID,
		},
		Meta: meta,
	})
}

// BadRequest writes a 400 Bad Request error.
func (rw *Writer) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, CodeBadRequest, message)
}

// Unauthorized writes a 401 Unauthorized error.
func (rw *Writer) Unauthorized(message string) {
	rw.Error(http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden writes a 403 Forbidden error.
func (rw *Writer) Forbidden(message string) {
	rw.Error(http.StatusForbidden, CodeForbidden, message)
}

// NotFound writes a 404 Not Found error.
func (rw *Writer) NotFound(message string) {
	rw.Error(http.StatusNotFound, CodeNotFound, message)
}

// Conflict writes a 409 Conflict error.
func (rw *Writer) Conflict(message string) {
	rw.Error(http.StatusConflict, CodeConflict, message)
}

// TooManyRequests writes a 429 Too Many Requests error.
func (rw *Writer) TooManyRequests(message string) {
	rw.Error(http.StatusTooManyRequests, CodeTooManyRequests, message)
}

// PayloadTooLarge writes a 413 error.
func (rw *Writer) PayloadTooLarge(message string) {
	rw.Error(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, message)
}

// InternalError writes a 500 Internal Server Error.
func (rw *Writer) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, CodeInternalError, message)
}

// ServiceUnavailable writes a 503 Service Unavailable error.
func (rw *Writer) ServiceUnavailable(message string) {
	rw.Error(http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}

// ValidationError writes a 400 error with validation details.
func (rw *Writer) ValidationError(message string, details interface{}) {
	rw.ErrorWithDetails(http.StatusBadRequest, CodeValidationFailed, message, details)
}

// DatabaseError logs err and writes a generic 500.
func (rw *Writer) DatabaseError(err error) {
	logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Database error")
	rw.Error(http.StatusInternalServerError, CodeDatabaseError, "A database error occurred")
}

func (rw *Writer) writeJSON(statusCode int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteSuccess is a convenience function for writing success responses.
func WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	New(w, r).Success(data)
}

// WriteError is a convenience function for writing error responses.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	New(w, r).Error(statusCode, code, message)
}
