package domain

import (
	"encoding/json"
	"fmt"
)

// IDField is the JSON key documents expose their identifier under.
const IDField = "_id"

// Document is a schema-flexible record as stored in the document store.
type Document map[string]any

// String returns the string value stored at key, if any.
func (d Document) String(key string) (string, bool) {
	v, ok := d[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float returns the numeric value stored at key. Missing or non-numeric
// values report false.
func (d Document) Float(key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Clone returns a shallow copy with the identifier key removed.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

func marshalWithID(id string, doc Document) ([]byte, error) {
	out := doc.Clone()
	out[IDField] = id
	return json.Marshal(out)
}

func unmarshalWithID(data []byte) (string, Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, err
	}
	if doc == nil {
		return "", nil, fmt.Errorf("document must be a JSON object")
	}
	id, _ := doc.String(IDField)
	delete(doc, IDField)
	return id, doc, nil
}
