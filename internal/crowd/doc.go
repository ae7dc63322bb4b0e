// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package crowd generates the simulated crowd analytics behind every dashboard
widget.

No real measurement exists. Each generator draws from a sinusoidal sequence
seeded by the sum of the location name's UTF-16 code units, so a location
always produces the same trends, heat map, anomalies, predictions and
readings:

	rng := crowd.NewSource("Hitech City")
	v := rng.Float64() // frac(sin(seed) * 10000), then seed++

Generators:

  - DensitySeries, NextDensity, LiveStep: the 30-minute chart and live steps
  - DailyTrend, WeeklyTrend: 24-hour and 7-day trend bars
  - HeatMap: 5 to 14 weighted points with a fixed legend
  - Anomalies: 3 to 6 events in the last two hours, newest first
  - HourlyPredictions, DailyPredictions, PredictionInsights: forecasts
  - SensorReadings, LiveReadings, DriftReadings, ClassifyReading:
    environmental readings with status and trend
  - ImageResults, VideoResults: placeholder upload analysis
  - NewNotification, HighDensityAlert: live feed notifications

Generators that depend on wall-clock time take it as a parameter. Values that
must vary between calls (upload results, notifications, live steps) take a
Rand, which tests satisfy with a fixed sequence.
*/
package crowd
