// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package crowd

import (
	"math/rand/v2"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// seq replays a fixed list of draws, repeating the last one.
type seq struct {
	vals []float64
	i    int
}

func (s *seq) Float64() float64 {
	v := s.vals[min(s.i, len(s.vals)-1)]
	s.i++
	return v
}

func fixed(vals ...float64) *seq { return &seq{vals: vals} }

// Wednesday 12:07 UTC
var refTime = time.Date(2026, time.October, 14, 12, 7, 0, 0, time.UTC)

func TestSeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location string
		want     float64
	}{
		{"Uppal", 514},
		{"Hitech City", 1038},
		{"Times Square", 1171},
		{"", 0},
	}
	for _, tt := range tests {
		if got := Seed(tt.location); got != tt.want {
			t.Errorf("Seed(%q) = %v, want %v", tt.location, got, tt.want)
		}
	}
}

func TestSource_RangeAndDeterminism(t *testing.T) {
	t.Parallel()

	a, b := NewSource("Gachibowli"), NewSource("Gachibowli")
	for i := 0; i < 1000; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("draw %d differs: %v vs %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d = %v, want [0,1)", i, va)
		}
	}
}

func TestJSRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want int
	}{
		{2.5, 3},
		{2.49, 2},
		{-2.5, -2},
		{-2.51, -3},
		{0, 0},
	}
	for _, tt := range tests {
		if got := jsRound(tt.in); got != tt.want {
			t.Errorf("jsRound(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Hitech City":       "hitech-city",
		"LB  Nagar":         "lb-nagar",
		"Uppal":             "uppal",
		"Times\tSquare":     "times-square",
		"Piccadilly Circus": "piccadilly-circus",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDensityLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v    int
		want models.DensityLevel
	}{
		{0, models.DensityLow},
		{39, models.DensityLow},
		{40, models.DensityMedium},
		{69, models.DensityMedium},
		{70, models.DensityHigh},
		{100, models.DensityHigh},
	}
	for _, tt := range tests {
		if got := DensityLevel(tt.v); got != tt.want {
			t.Errorf("DensityLevel(%d) = %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestDensitySeries(t *testing.T) {
	t.Parallel()

	series := DensitySeries(65, refTime, fixed(0.5))
	if len(series) != 31 {
		t.Fatalf("len = %d, want 31", len(series))
	}
	if series[0].Time != "11:37" || series[30].Time != "12:07" {
		t.Errorf("labels = %s..%s, want 11:37..12:07", series[0].Time, series[30].Time)
	}
	// zero jitter at i=0: clamp(30,95,65) = 65
	if series[30].Value != 65 {
		t.Errorf("last value = %d, want 65", series[30].Value)
	}
	// i=30: 65 - 15 + sin(6)*15 = 45.81
	if series[0].Value != 46 {
		t.Errorf("first value = %d, want 46", series[0].Value)
	}

	for _, p := range DensitySeries(95, refTime, rand.New(rand.NewPCG(1, 2))) {
		if p.Value < 0 || p.Value > 100 {
			t.Fatalf("value %d out of range", p.Value)
		}
	}
}

func TestNextDensity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current int
		draw    float64
		want    int
	}{
		{50, 0.5, 50},
		{50, 0.0, 47},
		{50, 0.999, 53},
		{1, 0.0, 0},
		{99, 0.999, 100},
	}
	for _, tt := range tests {
		if got := NextDensity(tt.current, fixed(tt.draw)); got != tt.want {
			t.Errorf("NextDensity(%d, %v) = %d, want %d", tt.current, tt.draw, got, tt.want)
		}
	}
}

func TestLiveStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		current   int
		draws     []float64
		wantNext  int
		wantTrend int
		wantAlert bool
	}{
		{"crosses threshold", 79, []float64{0.99, 0.5}, 82, 5, true},
		{"already high", 82, []float64{0.99, 0.0}, 85, -5, false},
		{"lands on threshold", 78, []float64{0.72, 0.0}, 80, -5, false},
		{"floor bound", 31, []float64{0.0, 0.99}, 30, 14, false},
		{"ceiling bound", 94, []float64{0.99, 0.0}, 95, -5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			next, trend, alert := LiveStep(tt.current, fixed(tt.draws...))
			if next != tt.wantNext || trend != tt.wantTrend || alert != tt.wantAlert {
				t.Errorf("LiveStep(%d) = (%d, %d, %v), want (%d, %d, %v)",
					tt.current, next, trend, alert, tt.wantNext, tt.wantTrend, tt.wantAlert)
			}
		})
	}
}

func TestDailyTrend(t *testing.T) {
	t.Parallel()

	got := DailyTrend("Uppal", refTime)
	if len(got) != 24 {
		t.Fatalf("len = %d, want 24", len(got))
	}
	if got[0].Label != "13:00" || got[0].Value != 76 {
		t.Errorf("first = %+v, want {13:00 76}", got[0])
	}
	if got[23].Label != "12:00" || got[23].Value != 75 {
		t.Errorf("last = %+v, want {12:00 75}", got[23])
	}
}

func TestWeeklyTrend(t *testing.T) {
	t.Parallel()

	got := WeeklyTrend("Uppal", time.Wednesday)
	want := []models.TrendPoint{
		{Label: "Thu", Value: 78},
		{Label: "Fri", Value: 61},
		{Label: "Sat", Value: 46},
		{Label: "Sun", Value: 49},
		{Label: "Mon", Value: 76},
		{Label: "Tue", Value: 69},
		{Label: "Wed", Value: 61},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WeeklyTrend = %+v\nwant %+v", got, want)
	}
}

func TestTrends_Range(t *testing.T) {
	t.Parallel()

	daily := Trends("Uppal", refTime, RangeDaily)
	if daily.Daily == nil || daily.Weekly != nil {
		t.Error("daily range should fill only Daily")
	}
	both := Trends("Uppal", refTime, "")
	if both.Daily == nil || both.Weekly == nil {
		t.Error("empty range should fill both series")
	}
}

func TestHeatMap(t *testing.T) {
	t.Parallel()

	hm := HeatMap("Uppal")
	if len(hm.Points) != 14 {
		t.Fatalf("points = %d, want 14", len(hm.Points))
	}
	if hm.Points[0].X != 70 || hm.Points[0].Y != 137 {
		t.Errorf("first point = (%d,%d), want (70,137)", hm.Points[0].X, hm.Points[0].Y)
	}
	if hm.Filename != "heatmap-uppal.png" {
		t.Errorf("Filename = %q", hm.Filename)
	}
	if len(hm.Legend) != 3 || hm.Legend[0].Label != "High" {
		t.Errorf("Legend = %+v", hm.Legend)
	}

	for _, loc := range []string{"Uppal", "Hitech City", "Shibuya Crossing", "Oxford Street"} {
		for _, p := range HeatMap(loc).Points {
			if p.Value < 0.3 || p.Value >= 1.0 {
				t.Errorf("%s: value %v out of [0.3,1.0)", loc, p.Value)
			}
			if p.X < 50 || p.X >= 550 || p.Y < 50 || p.Y >= 350 {
				t.Errorf("%s: point (%d,%d) off canvas", loc, p.X, p.Y)
			}
			if p.Color != HeatColor(p.Value) {
				t.Errorf("%s: colour %s does not match value %v", loc, p.Color, p.Value)
			}
		}
	}
}

func TestHeatColor(t *testing.T) {
	t.Parallel()

	if HeatColor(0.3) != ColorLow || HeatColor(0.5) != ColorMedium || HeatColor(0.8) != ColorHigh {
		t.Error("HeatColor bucket boundaries mismatch")
	}
}

func TestAnomalies(t *testing.T) {
	t.Parallel()

	got := Anomalies("Uppal", refTime, "all")
	if len(got) != 6 {
		t.Fatalf("count = %d, want 6", len(got))
	}
	first := got[0]
	if first.Type != "Movement Anomaly" || first.Time != "3 minutes ago" || first.ID != "uppal-anomaly-4" {
		t.Errorf("first = %+v", first)
	}
	if first.Description != "Unexpected movement pattern detected at Uppal" {
		t.Errorf("Description = %q", first.Description)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Fatalf("not sorted newest first at %d", i)
		}
	}

	high := Anomalies("Uppal", refTime, "high")
	if len(high) != 3 {
		t.Errorf("high count = %d, want 3", len(high))
	}
	for _, a := range high {
		if a.Severity != models.SeverityHigh {
			t.Errorf("filter leaked severity %s", a.Severity)
		}
	}
}

func TestAnomalies_CountRange(t *testing.T) {
	t.Parallel()

	for _, loc := range []string{"Uppal", "Hitech City", "Times Square", "Akihabara", "Charminar"} {
		n := len(Anomalies(loc, refTime, ""))
		if n < 3 || n > 6 {
			t.Errorf("%s: %d anomalies, want 3..6", loc, n)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		minutes int
		want    string
	}{
		{0, "Just now"},
		{1, "1 minute ago"},
		{59, "59 minutes ago"},
		{60, "1 hour ago"},
		{119, "1 hour ago"},
		{120, "2 hours ago"},
	}
	for _, tt := range tests {
		if got := RelativeTime(tt.minutes); got != tt.want {
			t.Errorf("RelativeTime(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestHourlyPredictions(t *testing.T) {
	t.Parallel()

	got := HourlyPredictions("Uppal", refTime)
	wantLabels := []string{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00", "18:00"}
	wantValues := []int{37, 35, 48, 62, 74, 74, 68, 61, 52}
	if len(got) != len(wantLabels) {
		t.Fatalf("len = %d, want %d", len(got), len(wantLabels))
	}
	for i, p := range got {
		if p.Label != wantLabels[i] {
			t.Errorf("[%d] label = %q, want %q", i, p.Label, wantLabels[i])
		}
		observed := i <= 2
		if observed && (p.Actual == nil || p.Predicted != nil) {
			t.Fatalf("[%d] should carry only an actual value", i)
		}
		if !observed && (p.Predicted == nil || p.Actual != nil) {
			t.Fatalf("[%d] should carry only a predicted value", i)
		}
		v := p.Actual
		if v == nil {
			v = p.Predicted
		}
		if *v != wantValues[i] {
			t.Errorf("[%d] value = %d, want %d", i, *v, wantValues[i])
		}
	}
}

func TestHourlyPredictions_NoZeroPadding(t *testing.T) {
	t.Parallel()

	early := time.Date(2026, time.October, 14, 1, 0, 0, 0, time.UTC)
	got := HourlyPredictions("Uppal", early)
	if got[0].Label != "23:00" || got[2].Label != "1:00" || got[3].Label != "2:00" {
		t.Errorf("labels = %q %q %q", got[0].Label, got[2].Label, got[3].Label)
	}
}

func TestDailyPredictions(t *testing.T) {
	t.Parallel()

	got := DailyPredictions("Uppal", time.Wednesday)
	wantLabels := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}
	for i, p := range got {
		if p.Label != wantLabels[i] {
			t.Errorf("[%d] label = %q, want %q", i, p.Label, wantLabels[i])
		}
		if (i < 4) != (p.Actual != nil) {
			t.Errorf("[%d] actual presence mismatch", i)
		}
	}
}

func TestPredictionInsights(t *testing.T) {
	t.Parallel()

	got := PredictionInsights("Uppal")
	wantTimes := []string{"17:50", "18:00", "19:10"}
	wantConf := []models.Confidence{models.ConfidenceHigh, models.ConfidenceMedium, models.ConfidenceHigh}
	for i, in := range got {
		if in.ID != i+1 || in.Time != wantTimes[i] || in.Confidence != wantConf[i] {
			t.Errorf("[%d] = %+v", i, in)
		}
	}
	if got[0].Prediction != "Peak crowd density expected at Uppal" {
		t.Errorf("Prediction = %q", got[0].Prediction)
	}
}

func TestPredictions_Markers(t *testing.T) {
	t.Parallel()

	p := Predictions("Uppal", refTime, RangeHourly)
	if p.Now != "12:07" || p.Today != "Wed" {
		t.Errorf("markers = %q %q, want 12:07 Wed", p.Now, p.Today)
	}
	if p.Hourly == nil || p.Daily != nil {
		t.Error("hourly range should fill only Hourly")
	}
}

func TestSensorReadings(t *testing.T) {
	t.Parallel()

	got := SensorReadings("Uppal")
	want := []models.SensorReading{
		{ID: 1, Name: "Crowd Density", Value: 77, Unit: "%", Status: models.ReadingWarning, Message: "Crowd density at Uppal is approaching critical levels"},
		{ID: 2, Name: "Temperature", Value: 25, Unit: "°C", Status: models.ReadingCool},
		{ID: 3, Name: "Humidity", Value: 59, Unit: "%", Status: models.ReadingNormal},
		{ID: 4, Name: "Air Quality", Value: 52, Unit: "AQI", Status: models.ReadingModerate},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SensorReadings = %+v\nwant %+v", got, want)
	}
}

func TestDriftReadings(t *testing.T) {
	t.Parallel()

	in := []models.SensorReading{
		{ID: 1, Name: ReadingCrowdDensity, Value: 79, Status: models.ReadingWarning},
		{ID: 2, Name: ReadingTemperature, Value: 29, Status: models.ReadingNormal},
	}
	out := DriftReadings("Uppal", in, fixed(0.999, 0.0))
	if out[0].Value != 82 || out[1].Value != 26 {
		t.Errorf("drift = %v, %v; want 82, 26", out[0].Value, out[1].Value)
	}
	if out[0].Previous == nil || *out[0].Previous != 79 || out[0].Trend != models.ReadingUp {
		t.Errorf("crowd previous/trend = %v %q", out[0].Previous, out[0].Trend)
	}
	if out[1].Previous == nil || *out[1].Previous != 29 || out[1].Trend != models.ReadingDown {
		t.Errorf("temperature previous/trend = %v %q", out[1].Previous, out[1].Trend)
	}
	if out[0].Status != models.ReadingCritical || out[1].Status != models.ReadingCool {
		t.Errorf("statuses = %s, %s; want Critical, Cool", out[0].Status, out[1].Status)
	}
	if in[0].Value != 79 || in[0].Previous != nil {
		t.Error("input slice was modified")
	}

	clamped := DriftReadings("Uppal", []models.SensorReading{{Value: 99}, {Value: 1}}, fixed(0.999, 0.0))
	if clamped[0].Value != 100 || clamped[1].Value != 0 {
		t.Errorf("clamp = %v, %v; want 100, 0", clamped[0].Value, clamped[1].Value)
	}
}

func TestClassifyReading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		value      float64
		wantStatus models.ReadingStatus
		wantMsg    string
	}{
		{ReadingCrowdDensity, 81, models.ReadingCritical, "Crowd density at Uppal is at critical levels"},
		{ReadingCrowdDensity, 80, models.ReadingWarning, "Crowd density at Uppal is approaching critical levels"},
		{ReadingCrowdDensity, 61, models.ReadingWarning, "Crowd density at Uppal is approaching critical levels"},
		{ReadingCrowdDensity, 60, models.ReadingNormal, ""},
		{ReadingTemperature, 34, models.ReadingHot, "Temperature at Uppal is high"},
		{ReadingTemperature, 33, models.ReadingNormal, ""},
		{ReadingTemperature, 28, models.ReadingNormal, ""},
		{ReadingTemperature, 27, models.ReadingCool, ""},
		{ReadingAirQuality, 71, models.ReadingPoor, "Air quality at Uppal is poor"},
		{ReadingAirQuality, 70, models.ReadingModerate, ""},
		{ReadingAirQuality, 51, models.ReadingModerate, ""},
		{ReadingAirQuality, 50, models.ReadingNormal, ""},
		{ReadingHumidity, 95, models.ReadingNormal, ""},
	}
	for _, tt := range tests {
		status, msg := ClassifyReading("Uppal", tt.name, tt.value)
		if status != tt.wantStatus || msg != tt.wantMsg {
			t.Errorf("ClassifyReading(%s, %v) = %s %q, want %s %q", tt.name, tt.value, status, msg, tt.wantStatus, tt.wantMsg)
		}
	}
}

func TestLiveReadings_MatchesDashboard(t *testing.T) {
	t.Parallel()

	live := LiveReadings("Ameerpet", refTime)
	if got := Dashboard("Ameerpet", DefaultDensity, refTime).Readings; !reflect.DeepEqual(got, live) {
		t.Errorf("dashboard readings %+v differ from live readings %+v", got, live)
	}
	for _, r := range live {
		if r.Previous == nil || r.Trend == "" || r.Status == "" {
			t.Errorf("reading %+v not refreshed", r)
		}
	}
}

func TestImageResults(t *testing.T) {
	t.Parallel()

	res := ImageResults(fixed(0.0, 0.71))
	if res.Density != 50 || len(res.Hotspots) != 3 || len(res.Anomalies) != 2 {
		t.Errorf("ImageResults = %+v", res)
	}
	res = ImageResults(fixed(0.999, 0.7))
	if res.Density != 79 || len(res.Anomalies) != 0 || res.Anomalies == nil {
		t.Errorf("ImageResults = %+v", res)
	}
}

func TestVideoResults(t *testing.T) {
	t.Parallel()

	res := VideoResults(fixed(0.5, 0.5, 0.9))
	if res.AverageDensity != 65 || res.PeakDensity != 82 || res.PeakTime != "00:01:45" {
		t.Errorf("VideoResults = %+v", res)
	}
	if len(res.Frames) != 5 || res.Frames[3].Density != 85 {
		t.Errorf("Frames = %+v", res.Frames)
	}
	if len(res.Anomalies) != 2 || res.Anomalies[0] != "Sudden dispersal" {
		t.Errorf("Anomalies = %v", res.Anomalies)
	}
}

func TestNewNotification(t *testing.T) {
	t.Parallel()

	n := NewNotification("Ameerpet", fixed(0.0, 0.5), refTime)
	if n.Type != models.NotifyAlert || n.Title != "Critical crowd level" {
		t.Errorf("notification = %+v", n)
	}
	if n.Description != "Critical crowd level at Ameerpet" || n.ID == "" {
		t.Errorf("notification = %+v", n)
	}

	n = NewNotification("Ameerpet", fixed(0.99, 0.99), refTime)
	if n.Type != models.NotifySystem || n.Title != "Connection restored" {
		t.Errorf("notification = %+v", n)
	}
}

func TestTimeAgo(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{-time.Minute, "Just now"},
		{0, "Just now"},
		{10 * time.Second, "Just now"},
		{11 * time.Second, "11 seconds ago"},
		{time.Minute, "1 minute ago"},
		{59*time.Minute + 59*time.Second, "59 minutes ago"},
		{time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}
	for _, tt := range tests {
		if got := TimeAgo(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("TimeAgo(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestHighDensityAlert(t *testing.T) {
	t.Parallel()

	n := HighDensityAlert("Uppal", refTime)
	if n.Description != "Crowd density at Uppal has exceeded 80%" {
		t.Errorf("Description = %q", n.Description)
	}
}

func TestDashboard_Deterministic(t *testing.T) {
	t.Parallel()

	a := Dashboard("Hitech City", DefaultDensity, refTime)
	b := Dashboard("Hitech City", DefaultDensity, refTime)
	if !reflect.DeepEqual(a, b) {
		t.Error("Dashboard should be identical for the same location and time")
	}
	if a.Density.Level != DensityLevel(a.Density.Current) {
		t.Errorf("Level %s does not match current %d", a.Density.Level, a.Density.Current)
	}
	if len(a.Readings) != 4 || len(a.Trends.Daily) != 24 || len(a.Predictions.Hourly) != 9 {
		t.Errorf("incomplete dashboard: %+v", a)
	}
}
