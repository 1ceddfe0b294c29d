package dashboard

import (
	"testing"
	"time"
)

func TestChartWindow(t *testing.T) {
	// Thursday
	now := time.Date(2026, 3, 12, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		period     string
		count      int
		wantPeriod string
		wantStart  string
		wantEnd    string
	}{
		{"daily default", "daily", 0, "daily", "2026-03-06", "2026-03-12"},
		{"unknown falls back to daily", "hourly", 3, "daily", "2026-03-10", "2026-03-12"},
		{"weekly starts on monday", "weekly", 2, "weekly", "2026-03-02", "2026-03-12"},
		{"monthly covers whole months", "monthly", 3, "monthly", "2026-01-01", "2026-03-31"},
		{"monthly crosses year", "monthly", 4, "monthly", "2025-12-01", "2026-03-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, start, end := chartWindow(tt.period, tt.count, now)
			if period != tt.wantPeriod {
				t.Errorf("period = %q, want %q", period, tt.wantPeriod)
			}
			if got := start.Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestBucketStart(t *testing.T) {
	sunday := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	if got := bucketStart("weekly", sunday).Format("2006-01-02"); got != "2026-03-09" {
		t.Errorf("weekly bucket of sunday = %s, want 2026-03-09", got)
	}
	if got := bucketStart("monthly", sunday).Format("2006-01-02"); got != "2026-03-01" {
		t.Errorf("monthly bucket = %s", got)
	}
	if got := bucketStart("daily", sunday); got.Hour() != 0 {
		t.Errorf("daily bucket keeps time of day: %v", got)
	}
}

func TestChartPoints_SortedWithTotals(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC) }
	buckets := map[time.Time]*bucketAgg{
		d(5): {Invoiced: 100, LabourPaid: 10},
		d(1): {Invoiced: 50},
		d(3): {LabourPaid: 25.5},
	}

	points, grand := chartPoints(buckets)
	want := []string{"2026-03-01", "2026-03-03", "2026-03-05"}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i, p := range points {
		if p.Label != want[i] {
			t.Errorf("points[%d].Label = %s, want %s", i, p.Label, want[i])
		}
	}
	if grand.Invoiced != 150 || grand.LabourPaid != 35.5 {
		t.Errorf("grand = %+v", grand)
	}
}
