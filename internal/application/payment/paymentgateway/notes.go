package paymentgateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Notes is the gateway's free-form key/value map. The gateway serialises an
// empty map as [] and may carry numbers, so decoding is lenient.
type Notes map[string]string

// Note keys written on orders and subscriptions.
const (
	NotePlanID      = "plan_id"
	NoteUserID      = "user_id"
	NotePaymentType = "payment_type"
	NotePlanTitle   = "plan_title"
)

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]")) {
		*n = Notes{}
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("decode notes: %w", err)
	}

	out := make(Notes, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		case nil:
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				return fmt.Errorf("decode note %s: %w", k, err)
			}
			out[k] = string(encoded)
		}
	}
	*n = out
	return nil
}

// UserID returns the user_id note, or 0 when absent or malformed.
func (n Notes) UserID() uint {
	v, err := strconv.ParseUint(n[NoteUserID], 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// PlanID returns the plan_id note, or 0 when absent or malformed.
func (n Notes) PlanID() uint {
	v, err := strconv.ParseUint(n[NotePlanID], 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// Merge returns a copy of n overlaid with other.
func (n Notes) Merge(other Notes) Notes {
	out := make(Notes, len(n)+len(other))
	for k, v := range n {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// ToMap converts the notes for JSON columns.
func (n Notes) ToMap() map[string]any {
	out := make(map[string]any, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}
