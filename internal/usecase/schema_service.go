package usecase

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/competitive-edge/backend/internal/domain"
)

// intPattern extracts the integer part of unit-suffixed strings like "2000W".
var intPattern = regexp.MustCompile(`-?\d+`)

// SchemaService validates dynamic product schemas and the data shaped by them.
// Validation collects every violation instead of short-circuiting on the first.
type SchemaService struct{}

// NewSchemaService creates a new schema service
func NewSchemaService() *SchemaService {
	return &SchemaService{}
}

// ValidateSchema checks schema structure: unique field and metric names, a
// name and label on every field, and parseable metric formulas. Formula syntax
// is checked here so malformed formulas fail fast at schema load rather than
// at comparison time.
func (s *SchemaService) ValidateSchema(schema domain.ProductSchema) (bool, []string) {
	var errs []string

	seenFields := make(map[string]bool)
	for _, field := range schema.Fields {
		if seenFields[field.Name] {
			errs = append(errs, fmt.Sprintf("duplicate field name %q", field.Name))
		}
		seenFields[field.Name] = true

		if field.Name == "" {
			errs = append(errs, "field name cannot be empty")
		}
		if field.Label == "" {
			errs = append(errs, fmt.Sprintf("field %q must have a label", field.Name))
		}
	}

	seenMetrics := make(map[string]bool)
	for _, metric := range schema.Metrics {
		if seenMetrics[metric.Name] {
			errs = append(errs, fmt.Sprintf("duplicate metric name %q", metric.Name))
		}
		seenMetrics[metric.Name] = true

		if _, err := ParseFormula(metric.Formula); err != nil {
			errs = append(errs, fmt.Sprintf("metric %q has an invalid formula: %v", metric.Name, err))
		}
	}

	return len(errs) == 0, errs
}

// ValidateData checks that data matches the schema: required fields present,
// and each present value agrees with its declared type. Numeric strings such
// as "1.6 gallons" count as numeric because the extractor is not always clean
// about units.
func (s *SchemaService) ValidateData(data map[string]any, schema domain.ProductSchema) (bool, []string) {
	var errs []string

	for _, field := range schema.Fields {
		if field.Required {
			if _, ok := data[field.Name]; !ok {
				errs = append(errs, fmt.Sprintf("required field %q is missing", field.Name))
			}
		}
	}

	for _, field := range schema.Fields {
		value, ok := data[field.Name]
		if !ok || value == nil {
			continue
		}

		switch field.Type {
		case domain.FieldTypeInteger:
			if !isWholeNumber(value) {
				errs = append(errs, fmt.Sprintf("field %q must be an integer", field.Name))
			}
		case domain.FieldTypeDecimal:
			if _, numeric := domain.NumericValue(value); !numeric {
				errs = append(errs, fmt.Sprintf("field %q must be a decimal number", field.Name))
			}
		case domain.FieldTypeBoolean:
			if _, isBool := value.(bool); !isBool {
				errs = append(errs, fmt.Sprintf("field %q must be a boolean", field.Name))
			}
		case domain.FieldTypeText:
			if _, isString := value.(string); !isString {
				errs = append(errs, fmt.Sprintf("field %q must be a string", field.Name))
			}
		}
	}

	return len(errs) == 0, errs
}

// NormalizeData coerces each present field to its declared type. Coercion is
// deliberately lenient: a value that cannot be coerced is passed through
// unchanged rather than dropped or raised. Extractor wrappers of the form
// {"value": 1.6, "unit": "gallons"} collapse to their inner value first.
// Normalizing already-normalized data is a no-op.
func (s *SchemaService) NormalizeData(data map[string]any, schema domain.ProductSchema) map[string]any {
	normalized := make(map[string]any, len(data))

	for _, field := range schema.Fields {
		value, ok := data[field.Name]
		if !ok {
			continue
		}

		if wrapper, isMap := value.(map[string]any); isMap {
			if inner, hasValue := wrapper["value"]; hasValue {
				value = inner
			}
		}
		if value == nil {
			normalized[field.Name] = nil
			continue
		}

		normalized[field.Name] = coerceValue(value, field.Type)
	}

	return normalized
}

func coerceValue(value any, fieldType domain.FieldType) any {
	switch fieldType {
	case domain.FieldTypeInteger:
		if n, ok := toInt(value); ok {
			return n
		}
	case domain.FieldTypeDecimal:
		if f, ok := domain.NumericValue(value); ok {
			return f
		}
	case domain.FieldTypeBoolean:
		if b, ok := value.(bool); ok {
			return b
		}
		if s, ok := value.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(s))); err == nil {
				return b
			}
		}
	case domain.FieldTypeText:
		switch v := value.(type) {
		case string:
			return v
		case bool:
			return strconv.FormatBool(v)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(v, 10)
		case int:
			return strconv.Itoa(v)
		}
	}
	// Lenient policy: uncoercible values pass through unchanged.
	return value
}

func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true // truncate, mirroring a lenient int() cast
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if m := intPattern.FindString(s); m != "" {
			if n, err := strconv.ParseInt(m, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func isWholeNumber(value any) bool {
	switch v := value.(type) {
	case int, int32, int64:
		return true
	case float64:
		return v == math.Trunc(v)
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return err == nil
	default:
		return false
	}
}
