package materials

import (
	"errors"
	"math"
	"testing"

	"interiors-erp/internal/apperr"
)

func TestCheckUsage(t *testing.T) {
	tests := []struct {
		name     string
		assigned float64
		used     float64
		qty      float64
		wantErr  bool
		excess   float64
	}{
		{"within remaining", 100, 40, 30, false, 0},
		{"exactly remaining", 100, 40, 60, false, 0},
		{"float noise at boundary", 0.3, 0.1, 0.2, false, 0},
		{"over by ten", 100, 40, 70, true, 10},
		{"nothing left", 50, 50, 1, true, 1},
		{"zero quantity", 100, 0, 0, true, 0},
		{"negative quantity", 100, 0, -5, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUsage(tt.assigned, tt.used, tt.qty)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckUsage(%v, %v, %v) error = %v, wantErr %v", tt.assigned, tt.used, tt.qty, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("error kind = %v, want validation", err)
			}
			if tt.excess > 0 {
				var ae *apperr.Error
				errors.As(err, &ae)
				o, ok := ae.Details.(OverAllocation)
				if !ok {
					t.Fatalf("details = %#v, want OverAllocation", ae.Details)
				}
				if math.Abs(o.Excess-tt.excess) > 1e-9 {
					t.Errorf("excess = %v, want %v", o.Excess, tt.excess)
				}
			}
		})
	}
}

func TestCheckUsage_MessageReportsExcess(t *testing.T) {
	err := CheckUsage(100, 40, 70)
	want := "Quantity 70 exceeds remaining stock 60 by 10"
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %q", err, want)
	}
}

func TestCheckUsageEdit(t *testing.T) {
	tests := []struct {
		name     string
		assigned float64
		used     float64
		oldQty   float64
		newQty   float64
		wantErr  bool
		excess   float64
	}{
		{"decrease", 100, 100, 40, 10, false, 0},
		{"increase within remaining", 100, 80, 20, 35, false, 0},
		{"increase to exactly full", 100, 80, 20, 40, false, 0},
		{"increase over", 100, 80, 20, 45, true, 5},
		{"unchanged when full", 100, 100, 25, 25, false, 0},
		{"zero new quantity", 100, 50, 10, 0, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUsageEdit(tt.assigned, tt.used, tt.oldQty, tt.newQty)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckUsageEdit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.excess > 0 {
				var ae *apperr.Error
				errors.As(err, &ae)
				o := ae.Details.(OverAllocation)
				if math.Abs(o.Excess-tt.excess) > 1e-9 {
					t.Errorf("excess = %v, want %v", o.Excess, tt.excess)
				}
			}
		})
	}
}

// ledger mirrors what UsageService does to a ProjectMaterial row: every
// write is validated first and applied only when valid.
type ledger struct {
	assigned float64
	used     float64
	logs     map[int]float64
	next     int
}

func (l *ledger) create(qty float64) error {
	if err := CheckUsage(l.assigned, l.used, qty); err != nil {
		return err
	}
	l.next++
	l.logs[l.next] = qty
	l.used += qty
	return nil
}

func (l *ledger) edit(id int, qty float64) error {
	old := l.logs[id]
	if err := CheckUsageEdit(l.assigned, l.used, old, qty); err != nil {
		return err
	}
	l.logs[id] = qty
	l.used += qty - old
	return nil
}

func (l *ledger) sum() float64 {
	total := 0.0
	for _, q := range l.logs {
		total += q
	}
	return total
}

func TestLedger_UsedMatchesLogsAfterMixedWrites(t *testing.T) {
	l := &ledger{assigned: 500, logs: map[int]float64{}}

	steps := []struct {
		op      string
		id      int
		qty     float64
		wantErr bool
	}{
		{"create", 0, 120, false},
		{"create", 0, 200, false},
		{"create", 0, 200, true}, // 180 left
		{"edit", 1, 300, false},  // delta equals what is left
		{"edit", 1, 90, false},
		{"create", 0, 210, false},
		{"edit", 2, 260, true},
		{"create", 0, 0.5, true},
		{"edit", 3, 100, false},
		{"create", 0, 0.5, false},
	}

	for i, s := range steps {
		beforeUsed := l.used
		beforeLogs := len(l.logs)
		var err error
		switch s.op {
		case "create":
			err = l.create(s.qty)
		case "edit":
			err = l.edit(s.id, s.qty)
		}
		if (err != nil) != s.wantErr {
			t.Fatalf("step %d (%s %v): error = %v, wantErr %v", i, s.op, s.qty, err, s.wantErr)
		}
		if err != nil && (l.used != beforeUsed || len(l.logs) != beforeLogs) {
			t.Fatalf("step %d: rejected write changed state", i)
		}
		if math.Abs(l.used-l.sum()) > 1e-9 {
			t.Fatalf("step %d: used %v != sum of logs %v", i, l.used, l.sum())
		}
		if l.used > l.assigned+1e-9 {
			t.Fatalf("step %d: used %v exceeds assigned %v", i, l.used, l.assigned)
		}
	}
}

func TestUsageWarning(t *testing.T) {
	tests := []struct {
		name      string
		assigned  float64
		usedAfter float64
		want      string
	}{
		{"plenty left", 100, 50, ""},
		{"at threshold", 100, 90, "Only 10 bags remaining (10% of assigned)"},
		{"below threshold", 100, 95, "Only 5 bags remaining (5% of assigned)"},
		{"exhausted", 100, 100, "Allocated stock is fully used"},
		{"nothing assigned", 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UsageWarning(tt.assigned, tt.usedAfter, 0.1, "bags"); got != tt.want {
				t.Errorf("UsageWarning() = %q, want %q", got, tt.want)
			}
		})
	}
}
