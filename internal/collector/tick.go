package collector

import (
	"fmt"
	"time"
)

// Field names one value carried by a tick
type Field string

const (
	FieldLTP           Field = "ltp"
	FieldChange        Field = "change"
	FieldChangePercent Field = "change_perc"
	FieldVolume        Field = "volume"
	FieldDayHigh       Field = "day_high"
	FieldDayLow        Field = "day_low"
	FieldPrevClose     Field = "prev_close"
)

// BidRate is the price field of bid level n (1-based)
func BidRate(n int) Field { return Field(fmt.Sprintf("bid%d_rate", n)) }

// BidQty is the quantity field of bid level n (1-based)
func BidQty(n int) Field { return Field(fmt.Sprintf("bid%d_qty", n)) }

// AskRate is the price field of ask level n (1-based)
func AskRate(n int) Field { return Field(fmt.Sprintf("ask%d_rate", n)) }

// AskQty is the quantity field of ask level n (1-based)
func AskQty(n int) Field { return Field(fmt.Sprintf("ask%d_qty", n)) }

// Tick is a live market update. Every field is optional; Get returns
// 0 for fields the feed never sent.
type Tick struct {
	values map[Field]float64
	At     time.Time
}

// NewTick creates a tick from a set of field values
func NewTick(values map[Field]float64, at time.Time) Tick {
	copied := make(map[Field]float64, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Tick{values: copied, At: at}
}

// Get returns the field value or 0 when absent
func (t Tick) Get(f Field) float64 {
	return t.values[f]
}

// Lookup returns the field value and whether it was present
func (t Tick) Lookup(f Field) (float64, bool) {
	v, ok := t.values[f]
	return v, ok
}

// Len returns the number of populated fields
func (t Tick) Len() int {
	return len(t.values)
}

// Merge returns a new tick with updates applied on top of t.
// The receiver is left unchanged.
func (t Tick) Merge(updates map[Field]float64, at time.Time) Tick {
	merged := make(map[Field]float64, len(t.values)+len(updates))
	for k, v := range t.values {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	if at.IsZero() {
		at = t.At
	}
	return Tick{values: merged, At: at}
}
