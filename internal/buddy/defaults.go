package buddy

import (
	"strconv"
	"strings"
)

// Defaults holds operator-configured fallback values applied to every
// invocation of a tool. A field listed in AutoFill is excluded from the
// default map entirely: the calling agent is expected to supply it.
type Defaults struct {
	SessionID          *string        `yaml:"session_id,omitempty"`
	Address            *string        `yaml:"address,omitempty"`
	Addresses          []AddressEntry `yaml:"addresses,omitempty"`
	Price              *Number        `yaml:"price,omitempty"`
	Surface            *string        `yaml:"surface,omitempty"`
	LocationType       *string        `yaml:"location_type,omitempty"`
	MaturityLevel      *string        `yaml:"maturity_level,omitempty"`
	MaturityPercentage *Number        `yaml:"maturity_percentage,omitempty"`
	PositivePoints     []string       `yaml:"positive_points,omitempty"`
	NegativePoints     []string       `yaml:"negative_points,omitempty"`
	Description        *string        `yaml:"description,omitempty"`
	ExtraFields        map[string]any `yaml:"extra_fields,omitempty"`

	// AutoFill lists field names (JSON names) whose configured default is
	// suppressed so the dynamic value is the only source.
	AutoFill []string `yaml:"auto_fill,omitempty"`
}

func (d Defaults) autoFilled(field string) bool {
	for _, f := range d.AutoFill {
		if strings.EqualFold(strings.TrimSpace(f), field) {
			return true
		}
	}
	return false
}

// effective returns a copy of d with auto-filled fields cleared.
func (d Defaults) effective() Defaults {
	out := d
	if d.autoFilled("sessionId") {
		out.SessionID = nil
	}
	if d.autoFilled("address") {
		out.Address = nil
	}
	if d.autoFilled("addresses") {
		out.Addresses = nil
	}
	if d.autoFilled("price") {
		out.Price = nil
	}
	if d.autoFilled("surface") {
		out.Surface = nil
	}
	if d.autoFilled("locationType") {
		out.LocationType = nil
	}
	if d.autoFilled("maturityLevel") {
		out.MaturityLevel = nil
	}
	if d.autoFilled("maturityPercentage") {
		out.MaturityPercentage = nil
	}
	if d.autoFilled("positivePoints") {
		out.PositivePoints = nil
	}
	if d.autoFilled("negativePoints") {
		out.NegativePoints = nil
	}
	if d.autoFilled("description") {
		out.Description = nil
	}
	if d.autoFilled("extraFields") {
		out.ExtraFields = nil
	}
	return out
}

// Merge combines configured defaults with a dynamic input. Scalars prefer the
// dynamic value; set-valued fields become a de-duplicated union when either
// side is non-empty and stay absent otherwise; extraFields are shallow-merged
// with dynamic keys winning. Pure combination, no validation.
func Merge(defaults Defaults, dynamic *Input) *Input {
	d := defaults.effective()

	out := &Input{}
	if dynamic != nil {
		cp := *dynamic
		out = &cp
	}

	if out.SessionID == nil {
		out.SessionID = d.SessionID
	}
	if out.Address == nil {
		out.Address = d.Address
	}
	if out.Price == nil {
		out.Price = d.Price
	}
	if out.Surface == nil {
		out.Surface = d.Surface
	}
	if out.LocationType == nil {
		out.LocationType = d.LocationType
	}
	if out.MaturityLevel == nil {
		out.MaturityLevel = d.MaturityLevel
	}
	if out.MaturityPercentage == nil {
		out.MaturityPercentage = d.MaturityPercentage
	}
	if out.Description == nil {
		out.Description = d.Description
	}

	out.Addresses = unionAddresses(d.Addresses, out.Addresses)
	out.PositivePoints = unionStrings(d.PositivePoints, out.PositivePoints)
	out.NegativePoints = unionStrings(d.NegativePoints, out.NegativePoints)

	if len(d.ExtraFields) > 0 || out.ExtraFields != nil {
		merged := make(map[string]any, len(d.ExtraFields)+len(out.ExtraFields))
		for k, v := range d.ExtraFields {
			merged[k] = v
		}
		for k, v := range out.ExtraFields {
			merged[k] = v
		}
		out.ExtraFields = merged
	}

	return out
}

// unionStrings returns the de-duplicated union of both slices, or nil when
// both are empty. Absence and emptiness are distinct states downstream.
func unionStrings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func unionAddresses(a, b []AddressEntry) []AddressEntry {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]AddressEntry, 0, len(a)+len(b))
	for _, e := range append(append([]AddressEntry{}, a...), b...) {
		key := addressKey(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

func addressKey(e AddressEntry) string {
	var sb strings.Builder
	sb.WriteString(e.Address)
	sb.WriteByte(0)
	if e.Price != nil {
		sb.WriteString(strconv.FormatFloat(float64(*e.Price), 'g', -1, 64))
	}
	sb.WriteByte(0)
	if e.Surface != nil {
		sb.WriteString(*e.Surface)
	}
	sb.WriteByte(0)
	if e.LocationType != nil {
		sb.WriteString(*e.LocationType)
	}
	return sb.String()
}
