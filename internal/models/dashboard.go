// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package models

import "time"

// DensityLevel buckets a density percentage.
type DensityLevel string

const (
	DensityLow    DensityLevel = "Low"
	DensityMedium DensityLevel = "Medium"
	DensityHigh   DensityLevel = "High"
)

// DensityPoint is one sample of the 30-minute density series.
type DensityPoint struct {
	Time  string `json:"time"` // HH:MM
	Value int    `json:"value"`
}

// DensitySnapshot is the current-density widget payload.
type DensitySnapshot struct {
	Location string         `json:"location"`
	Current  int            `json:"current"`
	Level    DensityLevel   `json:"level"`
	Series   []DensityPoint `json:"series"`
}

// TrendPoint is one bar of the daily (hour label) or weekly (day label) trend.
type TrendPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Trends holds both trend ranges for a location.
type Trends struct {
	Location string       `json:"location"`
	Daily    []TrendPoint `json:"daily,omitempty"`
	Weekly   []TrendPoint `json:"weekly,omitempty"`
}

// HeatPoint is one weighted point on the heat map canvas.
type HeatPoint struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Value float64 `json:"value"` // 0.3 to 1.0
	Color string  `json:"color"`
}

// LegendEntry maps a colour to a density label.
type LegendEntry struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// HeatMap is the heat map widget payload.
type HeatMap struct {
	Location string        `json:"location"`
	Points   []HeatPoint   `json:"points"`
	Legend   []LegendEntry `json:"legend"`
	Filename string        `json:"filename"`
}

// Severity is an anomaly's severity.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

// Anomaly is a simulated unusual crowd event.
type Anomaly struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	Time        string    `json:"time"` // relative label, e.g. "5 minutes ago"
}

// PredictionPoint carries either an observed or a predicted value.
type PredictionPoint struct {
	Label     string `json:"label"`
	Actual    *int   `json:"actual"`
	Predicted *int   `json:"predicted"`
}

// Confidence grades a prediction insight.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// PredictionInsight is a short textual forecast.
type PredictionInsight struct {
	ID         int        `json:"id"`
	Location   string     `json:"location"`
	Time       string     `json:"time"`
	Prediction string     `json:"prediction"`
	Confidence Confidence `json:"confidence"`
}

// Predictions is the predictions widget payload.
type Predictions struct {
	Location string              `json:"location"`
	Hourly   []PredictionPoint   `json:"hourly,omitempty"`
	Daily    []PredictionPoint   `json:"daily,omitempty"`
	Insights []PredictionInsight `json:"insights"`
	Now      string              `json:"now"`   // H:MM marker for the hourly chart
	Today    string              `json:"today"` // weekday marker for the daily chart
}

// ReadingStatus classifies a sensor reading against its thresholds.
type ReadingStatus string

const (
	ReadingNormal   ReadingStatus = "Normal"
	ReadingWarning  ReadingStatus = "Warning"
	ReadingCritical ReadingStatus = "Critical"
	ReadingHot      ReadingStatus = "Hot"
	ReadingCool     ReadingStatus = "Cool"
	ReadingModerate ReadingStatus = "Moderate"
	ReadingPoor     ReadingStatus = "Poor"
)

// ReadingTrend is the direction of a reading since the previous refresh.
type ReadingTrend string

const (
	ReadingUp   ReadingTrend = "up"
	ReadingDown ReadingTrend = "down"
)

// SensorReading is one environmental reading for a location. Previous and
// Trend are set once the reading has been refreshed at least once.
type SensorReading struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Value    float64       `json:"value"`
	Unit     string        `json:"unit"`
	Status   ReadingStatus `json:"status"`
	Message  string        `json:"message,omitempty"`
	Previous *float64      `json:"previousValue,omitempty"`
	Trend    ReadingTrend  `json:"trend,omitempty"`
}

// NotificationType classifies a dashboard notification.
type NotificationType string

const (
	NotifyAlert      NotificationType = "alert"
	NotifyAnomaly    NotificationType = "anomaly"
	NotifyPrediction NotificationType = "prediction"
	NotifySystem     NotificationType = "system"
)

// Notification is a simulated dashboard notification pushed over the live feed.
type Notification struct {
	ID          string           `json:"id"`
	Location    string           `json:"location"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Timestamp   time.Time        `json:"timestamp"`
	Read        bool             `json:"read"`          // set per user when listed
	Age         string           `json:"age,omitempty"` // "5 minutes ago"
}

// Dashboard aggregates every widget payload for one location.
type Dashboard struct {
	Location    string           `json:"location"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Density     DensitySnapshot  `json:"density"`
	Trends      Trends           `json:"trends"`
	HeatMap     HeatMap          `json:"heatMap"`
	Anomalies   []Anomaly        `json:"anomalies"`
	Predictions Predictions      `json:"predictions"`
	Readings    []SensorReading  `json:"readings"`
	Sensors     []Sensor         `json:"sensors,omitempty"`
	SensorStats *SensorStatusSum `json:"sensorStats,omitempty"`
}

// SensorStatusSum counts a location's sensors by status.
type SensorStatusSum struct {
	Total   int `json:"total"`
	Online  int `json:"online"`
	Warning int `json:"warning"`
	Offline int `json:"offline"`
}

// DensityTick is published every live interval for each tracked location.
type DensityTick struct {
	Location  string       `json:"location"`
	Value     int          `json:"value"`
	Previous  int          `json:"previous"`
	Trend     int          `json:"trend"` // percent change from the last hour
	Level     DensityLevel `json:"level"`
	Alert     bool         `json:"alert"` // crossed above the high-density threshold
	Point     DensityPoint `json:"point"` // next point of the 30-minute chart
	Timestamp time.Time    `json:"timestamp"`
}
