package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"katalog-produk/models"
)

// ProductFromDocument maps a generic document (id + decoded fields) onto a Product.
// Unknown fields are ignored; missing or malformed fields fall back to their zero value.
func ProductFromDocument(id string, fields map[string]any) models.Product {
	return models.Product{
		ID:       id,
		Name:     stringField(fields["name"]),
		Price:    numberField(fields["price"]),
		Category: stringField(fields["category"]),
		Barcode:  stringField(fields["barcode"]),
		Images:   stringList(fields["images"]),
	}
}

// ProductFromJSON decodes a JSON document body and maps it onto a Product
func ProductFromJSON(id string, body []byte) (models.Product, error) {
	var fields map[string]any
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil {
		return models.Product{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return ProductFromDocument(id, fields), nil
}

// stringField converts a scalar document value to a display string
func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// numberField converts a document value to a price, 0 when absent or not numeric
func numberField(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// stringList keeps the string entries of a document array, in order
func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// firestoreValue mirrors the REST encoding of a Firestore Value
type firestoreValue struct {
	StringValue  *string         `json:"stringValue"`
	IntegerValue *string         `json:"integerValue"`
	DoubleValue  *float64        `json:"doubleValue"`
	BooleanValue *bool           `json:"booleanValue"`
	NullValue    *string         `json:"nullValue"`
	ArrayValue   *firestoreArray `json:"arrayValue"`
	MapValue     *firestoreMap   `json:"mapValue"`
}

type firestoreArray struct {
	Values []firestoreValue `json:"values"`
}

type firestoreMap struct {
	Fields map[string]firestoreValue `json:"fields"`
}

// FlattenFirestoreFields converts the JSON encoding of Firestore document fields
// into plain Go values (string, float64, bool, []any, map[string]any, nil)
func FlattenFirestoreFields(raw []byte) (map[string]any, error) {
	var fields map[string]firestoreValue
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode firestore fields: %w", err)
	}
	return flattenFirestoreMap(fields), nil
}

func flattenFirestoreMap(fields map[string]firestoreValue) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = flattenFirestoreValue(v)
	}
	return out
}

func flattenFirestoreValue(v firestoreValue) any {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntegerValue != nil:
		n, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return nil
		}
		return float64(n)
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.ArrayValue != nil:
		items := make([]any, 0, len(v.ArrayValue.Values))
		for _, item := range v.ArrayValue.Values {
			items = append(items, flattenFirestoreValue(item))
		}
		return items
	case v.MapValue != nil:
		return flattenFirestoreMap(v.MapValue.Fields)
	default:
		return nil
	}
}
