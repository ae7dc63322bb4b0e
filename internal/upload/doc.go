// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

// Package upload accepts image and video uploads, stores them on disk and
// records a placeholder crowd analysis for each.
//
// Content is sniffed with gabriel-vasile/mimetype. A file is accepted only
// when the sniffed type is on the whitelist, belongs to the endpoint's kind
// (image or video), and agrees with the family of the declared part
// Content-Type. Files are stored as <unix-millis>-<basename> and served
// read-only under /uploads/.
package upload
