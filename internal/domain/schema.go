package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// leadingNumberPattern extracts the numeric part of values like "1.6 gallons".
var leadingNumberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// FieldType is the declared type of a schema field.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeInteger FieldType = "integer"
	FieldTypeDecimal FieldType = "decimal"
	FieldTypeBoolean FieldType = "boolean"
)

// IsNumeric reports whether values of this type are compared numerically.
func (t FieldType) IsNumeric() bool {
	return t == FieldTypeInteger || t == FieldTypeDecimal
}

// CompareDirection declares which direction of difference favors the competitor.
type CompareDirection string

const (
	CompareLower  CompareDirection = "lower"  // lower value is an advantage (e.g. price)
	CompareHigher CompareDirection = "higher" // higher value is an advantage (e.g. capacity)
)

// FieldDefinition describes one field of a dynamic product schema.
// Name is the key used in product data JSON; Unit is display-only.
type FieldDefinition struct {
	Name             string           `json:"name"`
	Type             FieldType        `json:"type"`
	Unit             string           `json:"unit,omitempty"`
	Label            string           `json:"label"`
	CompareDirection CompareDirection `json:"compareDirection"`
	Required         bool             `json:"required"`
}

// MetricDefinition describes a derived value computed from a formula over
// field names (e.g. "price / wattage").
type MetricDefinition struct {
	Name             string           `json:"name"`
	Formula          string           `json:"formula"`
	Label            string           `json:"label"`
	CompareDirection CompareDirection `json:"compareDirection"`
	Format           string           `json:"format,omitempty"`
}

// ProductSchema is a user-defined, per-product-type set of field and metric
// definitions. Field and metric names must be unique within the schema.
type ProductSchema struct {
	Fields  []FieldDefinition  `json:"fields"`
	Metrics []MetricDefinition `json:"metrics,omitempty"`
}

// FieldByName returns the field definition with the given name, if present.
func (s ProductSchema) FieldByName(name string) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// NumericValue coerces a dynamic field value to float64. It accepts Go and
// JSON number types plus numeric strings, including strings carrying a unit
// suffix such as "1.6 gallons" (the extractor is not always clean about units).
func NumericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
		if m := leadingNumberPattern.FindString(s); m != "" {
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return f, true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}
