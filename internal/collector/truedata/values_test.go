package truedata

import (
	"encoding/json"
	"testing"

	"github.com/newthinker/quotegate/internal/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{12.5, 12.5, true},
		{"12.5", 12.5, true},
		{" 7 ", 7, true},
		{json.Number("3.25"), 3.25, true},
		{"", 0, false},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := toFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "100", toString(100.0))
	assert.Equal(t, "abc", toString("abc"))
	assert.Equal(t, "", toString(nil))
}

func TestFlexFloat(t *testing.T) {
	var v struct {
		A flexFloat `json:"a"`
		B flexFloat `json:"b"`
		C flexFloat `json:"c"`
		D flexFloat `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":1.5,"b":"2","c":null,"d":""}`), &v))
	assert.Equal(t, 1.5, *v.A.value)
	assert.Equal(t, 2.0, *v.B.value)
	assert.Nil(t, v.C.value)
	assert.Nil(t, v.D.value)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"n/a"}`), &v))
}

func TestParseBidAsk(t *testing.T) {
	id, fields, ok := parseBidAsk([]any{"7", "ts", 10.5, 100.0, "10.6", "80"})
	require.True(t, ok)
	assert.Equal(t, "7", id)
	assert.Equal(t, 10.5, fields[collector.BidRate(1)])
	assert.Equal(t, 80.0, fields[collector.AskQty(1)])

	_, _, ok = parseBidAsk([]any{"7", "ts"})
	assert.False(t, ok)
}

func TestParseTrade_NoPrevClose(t *testing.T) {
	_, fields, ok := parseTrade([]any{"7", "ts", 50.0})
	require.True(t, ok)
	assert.Equal(t, 50.0, fields[collector.FieldLTP])
	_, hasChange := fields[collector.FieldChange]
	assert.False(t, hasChange)
}

func TestParseDepth_CapsAtBookDepth(t *testing.T) {
	var bids []any
	for i := 0; i < 7; i++ {
		bids = append(bids, []any{float64(100 - i), float64(10 + i), 1.0})
	}
	_, fields, ok := parseDepth([]any{"7", "ts", bids, []any{}})
	require.True(t, ok)
	assert.Equal(t, 96.0, fields[collector.BidRate(5)])
	_, has6 := fields[collector.BidRate(6)]
	assert.False(t, has6)
}
