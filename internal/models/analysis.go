// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package models

import "time"

// FileType is the kind of media an analysis was produced from.
type FileType string

const (
	FileImage FileType = "image"
	FileVideo FileType = "video"
	FileLive  FileType = "live"
)

// Valid reports whether f is a known file type.
func (f FileType) Valid() bool {
	return f == FileImage || f == FileVideo || f == FileLive
}

// Analysis is the stored result of an upload or live session.
// Results is free-form; see ImageResults and VideoResults for the shapes
// the upload handlers produce.
type Analysis struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	FileType  FileType               `json:"fileType"`
	FilePath  string                 `json:"filePath,omitempty"`
	Location  string                 `json:"location"`
	Results   map[string]interface{} `json:"results"`
	Timestamp time.Time              `json:"timestamp"`
}

// AnalysisFilter narrows GET /api/analysis. Zero fields match everything.
type AnalysisFilter struct {
	Location  string
	StartDate time.Time
	EndDate   time.Time
	Type      FileType
}

// Hotspot is a high-density point in an analysed image.
type Hotspot struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Value float64 `json:"value"`
}

// ImageResults is the placeholder result of an image upload.
type ImageResults struct {
	Density   int       `json:"density"`
	Hotspots  []Hotspot `json:"hotspots"`
	Anomalies []string  `json:"anomalies"`
}

// FrameDensity is the density at one timestamp of a video.
type FrameDensity struct {
	Timestamp string `json:"timestamp"` // HH:MM:SS offset into the video
	Density   int    `json:"density"`
}

// VideoResults is the placeholder result of a video upload.
type VideoResults struct {
	AverageDensity int            `json:"averageDensity"`
	PeakDensity    int            `json:"peakDensity"`
	PeakTime       string         `json:"peakTime"`
	Frames         []FrameDensity `json:"frames"`
	Anomalies      []string       `json:"anomalies"`
}

// UploadResponse is returned by the upload endpoints.
type UploadResponse struct {
	Message  string    `json:"message"`
	Analysis *Analysis `json:"analysis"`
}

// LiveStreamRequest is the body of POST /api/livestream.
type LiveStreamRequest struct {
	Location string `json:"location" validate:"required,max=200"`
}

// LiveStreamResponse is returned by POST /api/livestream.
type LiveStreamResponse struct {
	Message      string    `json:"message"`
	ConnectionID string    `json:"connectionId"`
	Location     string    `json:"location"`
	Timestamp    time.Time `json:"timestamp"`
}
