// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

// Package locations holds the built-in location catalog, the fuzzy location
// search used by the dashboard search bar, and per-user location preferences
// (current location, bookmarks, recents) persisted in BadgerDB.
package locations
