package buddy

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Action selects which Project Buddy payload shape a request targets.
type Action string

const (
	ActionLocation Action = "location"
	ActionMaturity Action = "project-maturity"
)

// ParseAction validates an action string. Empty input is returned as-is so
// callers can distinguish "absent" from "invalid".
func ParseAction(s string) (Action, error) {
	switch Action(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case ActionLocation:
		return ActionLocation, nil
	case ActionMaturity:
		return ActionMaturity, nil
	default:
		return "", fmt.Errorf("unknown action %q: must be %q or %q", s, ActionLocation, ActionMaturity)
	}
}

// Number is a float64 that also accepts numeric JSON strings. Agents routinely
// send "2000" where 2000 is meant, so the decoder is lenient here the same way
// argument coercion is elsewhere in the tool-calling world.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return fmt.Errorf("empty string is not a number")
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*n = Number(f)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// AddressEntry is one location listing. On the wire an entry may be a bare
// string, which is promoted to {address: s}.
type AddressEntry struct {
	Address      string  `json:"address"`
	Price        *Number `json:"price,omitempty"`
	Surface      *string `json:"surface,omitempty"`
	LocationType *string `json:"locationType,omitempty"`
}

func (a *AddressEntry) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var addr string
		if err := json.Unmarshal(b, &addr); err != nil {
			return err
		}
		*a = AddressEntry{Address: addr}
		return nil
	}

	// Alias type avoids recursing into this method.
	type plain AddressEntry
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("address entry must be a string or an object: %w", err)
	}
	*a = AddressEntry(p)
	return nil
}

// Input is the decoded tool call payload. Scalar fields are pointers so a
// present-but-blank value can be told apart from an absent one.
type Input struct {
	Action             string         `json:"action,omitempty"`
	SessionID          *string        `json:"sessionId,omitempty"`
	Address            *string        `json:"address,omitempty"`
	Addresses          []AddressEntry `json:"addresses,omitempty"`
	Price              *Number        `json:"price,omitempty"`
	Surface            *string        `json:"surface,omitempty"`
	LocationType       *string        `json:"locationType,omitempty"`
	MaturityLevel      *string        `json:"maturityLevel,omitempty"`
	MaturityPercentage *Number        `json:"maturityPercentage,omitempty"`
	PositivePoints     []string       `json:"positivePoints,omitempty"`
	NegativePoints     []string       `json:"negativePoints,omitempty"`
	Description        *string        `json:"description,omitempty"`
	ExtraFields        map[string]any `json:"extraFields,omitempty"`
}

// DecodeInput parses a raw tool call payload into a typed Input. A nil or
// empty payload decodes to an empty Input.
func DecodeInput(raw json.RawMessage) (*Input, error) {
	in := &Input{}
	if len(raw) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(raw, in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if _, err := ParseAction(in.Action); err != nil {
		return nil, err
	}
	return in, nil
}

func strPtr(s string) *string  { return &s }
func numPtr(f float64) *Number { n := Number(f); return &n }

// present reports whether a string pointer carries a non-blank value.
func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
