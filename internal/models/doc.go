// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

// Package models defines the records stored by the service and the payloads
// exchanged over the HTTP API.
//
// JSON field names are camelCase to match the dashboard front end. Request
// types carry go-playground/validator tags and are checked with
// validation.ValidateStruct before use.
package models
