package graph

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/postlinehq/postline/internal/platform"
)

// FlatValue decodes an insight value that arrives either as a flat number
// or as a breakdown map keyed by sub-category; maps are summed into one
// scalar.
type FlatValue float64

func (v *FlatValue) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = FlatValue(n)
		return nil
	}
	var breakdown map[string]float64
	if err := json.Unmarshal(data, &breakdown); err != nil {
		// Some metrics return nothing useful here (null, strings);
		// treat them as absent rather than failing the whole decode.
		*v = 0
		return nil
	}
	var sum float64
	for _, n := range breakdown {
		sum += n
	}
	*v = FlatValue(sum)
	return nil
}

// Insights is the response shape of an insights edge.
type Insights struct {
	Data []struct {
		Name   string `json:"name"`
		Period string `json:"period"`
		Values []struct {
			Value FlatValue `json:"value"`
		} `json:"values"`
	} `json:"data"`
}

// Value returns the latest value reported for a metric, or false when the
// provider did not include it.
func (r Insights) Value(name string) (float64, bool) {
	for _, m := range r.Data {
		if m.Name != name || len(m.Values) == 0 {
			continue
		}
		return float64(m.Values[len(m.Values)-1].Value), true
	}
	return 0, false
}

// Sum adds every reported value for a metric; daily-period metrics report
// one entry per day.
func (r Insights) Sum(name string) (float64, bool) {
	for _, m := range r.Data {
		if m.Name != name || len(m.Values) == 0 {
			continue
		}
		var sum float64
		for _, v := range m.Values {
			sum += float64(v.Value)
		}
		return sum, true
	}
	return 0, false
}

// IsNonexistingField reports whether err is the provider's complaint about a
// field unsupported for the queried node subtype. Callers retry once with
// the field omitted.
func IsNonexistingField(err error) bool {
	var perr *platform.ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	return strings.Contains(strings.ToLower(perr.Message), "nonexisting field")
}
