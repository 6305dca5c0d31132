package dto

import "encoding/json"

// UpdateOrderStatusRequest is the PATCH /orders/:id payload. Status is kept
// raw so any JSON value can be stored.
type UpdateOrderStatusRequest struct {
	Status json.RawMessage `json:"status"`
}

// StatusValue decodes Status, yielding nil when it was omitted.
func (r UpdateOrderStatusRequest) StatusValue() (any, error) {
	if len(r.Status) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(r.Status, &v); err != nil {
		return nil, err
	}
	return v, nil
}
