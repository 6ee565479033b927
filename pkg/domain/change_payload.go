package domain

import "encoding/json"

// ChangePayload wraps a JSON snapshot of an entity's state before or after a
// mutation. Event consumers decode it into the typed entity they expect.
type ChangePayload struct {
	defined bool
	raw     json.RawMessage
}

// NewChangePayload builds a payload wrapper from raw JSON. The bytes are
// cloned so callers cannot mutate shared state.
func NewChangePayload(raw json.RawMessage) ChangePayload {
	payload := ChangePayload{defined: true}
	if raw != nil {
		payload.raw = cloneRawMessage(raw)
	}
	return payload
}

// PayloadOf marshals value into a payload. A nil value yields an undefined
// payload; values that fail to marshal do as well.
func PayloadOf(value any) ChangePayload {
	if value == nil {
		return ChangePayload{}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return ChangePayload{}
	}
	return NewChangePayload(raw)
}

// Defined reports whether the payload has been initialized.
func (p ChangePayload) Defined() bool {
	return p.defined
}

// Raw returns a cloned copy of the underlying JSON bytes.
func (p ChangePayload) Raw() json.RawMessage {
	if !p.defined || len(p.raw) == 0 {
		return nil
	}
	return cloneRawMessage(p.raw)
}

// MarshalJSON renders the wrapped document, or null when undefined.
func (p ChangePayload) MarshalJSON() ([]byte, error) {
	if !p.defined || len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return cloneRawMessage(p.raw), nil
}

// DecodePayload decodes a payload into T. It returns false when the payload
// is undefined, empty or does not match T.
func DecodePayload[T any](payload ChangePayload) (T, bool) {
	var out T
	raw := payload.Raw()
	if len(raw) == 0 {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}

func cloneRawMessage(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	cloned := make(json.RawMessage, len(raw))
	copy(cloned, raw)
	return cloned
}
