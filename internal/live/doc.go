// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

// Package live runs the simulated live density feed.
//
// A Tracker holds the headline density of each location that a live
// session or dashboard has asked about. The Ticker advances every tracked
// location once per interval with crowd.LiveStep, walks its chart point
// with crowd.NextDensity and publishes a density.tick event. A step
// crossing above the high-density threshold also publishes a High Density
// Alert, and each step has a one in five chance of publishing a random
// notification. The Feed consumes notification events and keeps the ten
// most recent per location, with per-user read state, for
// GET /api/notifications.
package live
