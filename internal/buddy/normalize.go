package buddy

import (
	"fmt"
	"strings"
)

// NormResult carries a canonical request body plus whatever validation
// findings accumulated while building it. Body is nil when Errors is
// non-empty.
type NormResult struct {
	Body     map[string]any
	Errors   []string
	Warnings []string
}

// Normalize converts a merged input into the canonical body for the given
// action.
func Normalize(action Action, in *Input) NormResult {
	switch action {
	case ActionLocation:
		return NormalizeLocation(in)
	case ActionMaturity:
		return NormalizeMaturity(in)
	default:
		return NormResult{Errors: []string{"action is required or must be inferable"}}
	}
}

// NormalizeLocation builds the canonical location body. A single free-text
// address and an array of entries may both be present; the array wins and the
// single address is deprioritized with a warning. With exactly one surviving
// entry, its attributes are flattened to the body root as well.
func NormalizeLocation(in *Input) NormResult {
	var res NormResult

	single := ""
	if in.Address != nil {
		single = strings.TrimSpace(*in.Address)
		if single == "" {
			res.Warnings = append(res.Warnings, "address is blank after trimming and was dropped")
		}
	}

	surface := trimmedOrNil(in.Surface)
	if surface == nil && in.Surface != nil {
		res.Warnings = append(res.Warnings, "surface is blank after trimming and was dropped")
	}
	locationType := trimmedOrNil(in.LocationType)
	if locationType == nil && in.LocationType != nil {
		res.Warnings = append(res.Warnings, "locationType is blank after trimming and was dropped")
	}

	entries := make([]AddressEntry, 0, len(in.Addresses)+1)
	for _, e := range in.Addresses {
		e.Address = strings.TrimSpace(e.Address)
		if e.Address == "" {
			res.Warnings = append(res.Warnings, "an addresses entry had a blank address and was dropped")
			continue
		}
		entries = append(entries, e)
	}

	switch {
	case len(in.Addresses) == 0 && single != "":
		// Synthesize a one-element array from the single address plus the
		// top-level attributes.
		entries = append(entries, AddressEntry{
			Address:      single,
			Price:        in.Price,
			Surface:      surface,
			LocationType: locationType,
		})
	case len(entries) > 0 && single != "":
		res.Warnings = append(res.Warnings, "both address and addresses were supplied; the single address was deprioritized in favor of the array")
	}

	if len(entries) == 0 {
		res.Errors = append(res.Errors, "at least one valid address required")
		return res
	}

	body := map[string]any{}
	if present(in.SessionID) {
		body["sessionId"] = strings.TrimSpace(*in.SessionID)
	} else if in.SessionID != nil {
		res.Warnings = append(res.Warnings, "sessionId is blank after trimming and was dropped")
	}

	if len(entries) == 1 {
		// Entry values win; top-level values are the fallback. The effective
		// attributes land on both the entry and the body root.
		e := &entries[0]
		if e.Price == nil {
			e.Price = in.Price
		}
		if e.Surface == nil {
			e.Surface = surface
		}
		if e.LocationType == nil {
			e.LocationType = locationType
		}
		if e.Price != nil {
			body["price"] = float64(*e.Price)
		}
		if e.Surface != nil {
			body["surface"] = *e.Surface
		}
		if e.LocationType != nil {
			body["locationType"] = *e.LocationType
		}
	} else {
		// Multiple locations: the body root reflects only explicitly supplied
		// top-level values, never a per-entry value.
		if in.Price != nil {
			body["price"] = float64(*in.Price)
		}
		if surface != nil {
			body["surface"] = *surface
		}
		if locationType != nil {
			body["locationType"] = *locationType
		}
	}

	arr := make([]any, 0, len(entries))
	for _, e := range entries {
		m := map[string]any{"address": e.Address}
		if e.Price != nil {
			m["price"] = float64(*e.Price)
		}
		if e.Surface != nil {
			m["surface"] = *e.Surface
		}
		if e.LocationType != nil {
			m["locationType"] = *e.LocationType
		}
		arr = append(arr, m)
	}
	body["addresses"] = arr

	spreadExtraFields(body, in.ExtraFields)
	res.Body = body
	return res
}

// NormalizeMaturity builds the canonical project-maturity body. The body must
// carry at least one substantive field.
func NormalizeMaturity(in *Input) NormResult {
	var res NormResult

	body := map[string]any{}
	if present(in.SessionID) {
		body["sessionId"] = strings.TrimSpace(*in.SessionID)
	} else if in.SessionID != nil {
		res.Warnings = append(res.Warnings, "sessionId is blank after trimming and was dropped")
	}

	if s := trimmedOrNil(in.MaturityLevel); s != nil {
		body["maturityLevel"] = *s
	} else if in.MaturityLevel != nil {
		res.Warnings = append(res.Warnings, "maturityLevel is blank after trimming and was dropped")
	}

	if s := trimmedOrNil(in.Description); s != nil {
		body["description"] = *s
	} else if in.Description != nil {
		res.Warnings = append(res.Warnings, "description is blank after trimming and was dropped")
	}

	if in.MaturityPercentage != nil {
		pct := float64(*in.MaturityPercentage)
		if pct < 0 || pct > 100 {
			res.Errors = append(res.Errors, fmt.Sprintf("maturityPercentage must be between 0 and 100, got %v", pct))
			return res
		}
		body["maturityPercentage"] = pct
	}

	if pts := dedupePoints(in.PositivePoints); len(pts) > 0 {
		body["positivePoints"] = pts
	}
	if pts := dedupePoints(in.NegativePoints); len(pts) > 0 {
		body["negativePoints"] = pts
	}

	if _, lvl := body["maturityLevel"]; !lvl {
		_, pct := body["maturityPercentage"]
		_, pos := body["positivePoints"]
		_, neg := body["negativePoints"]
		_, desc := body["description"]
		if !pct && !pos && !neg && !desc {
			res.Errors = append(res.Errors, "at least one of maturityLevel, maturityPercentage, positivePoints, negativePoints or description is required")
			return res
		}
	}

	spreadExtraFields(body, in.ExtraFields)
	res.Body = body
	return res
}

// dedupePoints trims each point, drops empties and removes exact duplicates,
// preserving first-seen order.
func dedupePoints(points []string) []any {
	if len(points) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(points))
	out := make([]any, 0, len(points))
	for _, p := range points {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// spreadExtraFields copies extra fields onto the body last. Callers may
// override canonical keys this way; that is accepted as-is, not re-validated.
func spreadExtraFields(body map[string]any, extra map[string]any) {
	for k, v := range extra {
		body[k] = v
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
