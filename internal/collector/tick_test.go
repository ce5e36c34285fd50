package collector

import (
	"testing"
	"time"
)

func TestTick_GetDefaultsToZero(t *testing.T) {
	var tick Tick

	if got := tick.Get(FieldLTP); got != 0 {
		t.Errorf("expected 0 from zero tick, got %f", got)
	}
	if _, ok := tick.Lookup(BidRate(3)); ok {
		t.Error("expected missing field on zero tick")
	}
}

func TestTick_NewTickCopiesInput(t *testing.T) {
	values := map[Field]float64{FieldLTP: 100}
	tick := NewTick(values, time.Now())
	values[FieldLTP] = 200

	if got := tick.Get(FieldLTP); got != 100 {
		t.Errorf("expected tick to be isolated from input map, got %f", got)
	}
}

func TestTick_Merge(t *testing.T) {
	t0 := time.Date(2024, 10, 15, 9, 15, 0, 0, time.UTC)
	base := NewTick(map[Field]float64{FieldLTP: 100, FieldVolume: 10}, t0)

	merged := base.Merge(map[Field]float64{FieldLTP: 101, BidRate(1): 100.5}, time.Time{})

	if merged.Get(FieldLTP) != 101 {
		t.Errorf("expected ltp 101, got %f", merged.Get(FieldLTP))
	}
	if merged.Get(FieldVolume) != 10 {
		t.Errorf("expected volume kept, got %f", merged.Get(FieldVolume))
	}
	if merged.Get(BidRate(1)) != 100.5 {
		t.Errorf("expected bid1 100.5, got %f", merged.Get(BidRate(1)))
	}
	if !merged.At.Equal(t0) {
		t.Errorf("expected timestamp kept when update has none")
	}
	if base.Get(FieldLTP) != 100 {
		t.Error("merge must not mutate receiver")
	}
}

func TestLevelFieldNames(t *testing.T) {
	tests := []struct {
		got  Field
		want string
	}{
		{BidRate(1), "bid1_rate"},
		{BidQty(5), "bid5_qty"},
		{AskRate(2), "ask2_rate"},
		{AskQty(4), "ask4_qty"},
	}
	for _, tc := range tests {
		if string(tc.got) != tc.want {
			t.Errorf("got %s, want %s", tc.got, tc.want)
		}
	}
}

func TestWindow_Days(t *testing.T) {
	to := time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)
	w := Window{From: to.AddDate(0, 0, -30), To: to, Resolution: ResolutionEOD}

	if w.Days() != 30 {
		t.Errorf("expected 30 days, got %d", w.Days())
	}
}
