package aspe

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/darmiel/doipv/internal/core"
)

// Namespaced profile attributes in the token payload.
const (
	AttrVersion     = "http://ariadne.id/version"
	AttrType        = "http://ariadne.id/type"
	AttrName        = "http://ariadne.id/name"
	AttrDescription = "http://ariadne.id/description"
	AttrColor       = "http://ariadne.id/color"
	AttrClaims      = "http://ariadne.id/claims"
)

// Decode maps a verified payload to a profile record.
// Each attribute is optional on its own: a missing or mistyped attribute is left absent
// instead of failing the whole profile.
func Decode(subjectURI string, payload map[string]any) core.ProfileRecord {
	return core.ProfileRecord{
		URI:         subjectURI,
		Version:     uintAttr(payload[AttrVersion]),
		Name:        stringAttr(payload[AttrName]),
		Description: stringAttr(payload[AttrDescription]),
		Color:       stringAttr(payload[AttrColor]),
		ClaimURIs:   stringsAttr(payload[AttrClaims]),
	}
}

func stringAttr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func uintAttr(v any) *uint64 {
	var n uint64
	switch t := v.(type) {
	case json.Number:
		u, err := strconv.ParseUint(t.String(), 10, 64)
		if err != nil {
			return nil
		}
		n = u
	case float64:
		if t < 0 || t != math.Trunc(t) || t >= math.MaxUint64 {
			return nil
		}
		n = uint64(t)
	case int:
		if t < 0 {
			return nil
		}
		n = uint64(t)
	case int64:
		if t < 0 {
			return nil
		}
		n = uint64(t)
	case uint64:
		n = t
	default:
		return nil
	}
	return &n
}

// stringsAttr keeps the string entries of a list in order and drops the rest.
func stringsAttr(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
