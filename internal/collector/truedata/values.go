package truedata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// toFloat converts a feed value that may be a JSON number or a
// numeric string.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, false
		}
		return d.InexactFloat64(), true
	default:
		return 0, false
	}
}

// toString renders an identifier that may arrive as a number or string
func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return decimal.NewFromFloat(x).String()
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// flexFloat decodes a JSON number or numeric string. A null or empty
// value leaves it unset.
type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	v, ok := toFloat(raw)
	if !ok {
		if s, isStr := raw.(string); isStr && strings.TrimSpace(s) == "" {
			return nil
		}
		return fmt.Errorf("not a number: %s", string(b))
	}
	f.value = &v
	return nil
}
