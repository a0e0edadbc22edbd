package usecase

import (
	"testing"

	"github.com/competitive-edge/backend/internal/domain"
)

func testSchema() domain.ProductSchema {
	return domain.ProductSchema{
		Fields: []domain.FieldDefinition{
			{Name: "price", Label: "Price", Type: domain.FieldTypeDecimal, Required: true, CompareDirection: domain.CompareLower},
			{Name: "wattage", Label: "Wattage", Type: domain.FieldTypeInteger, CompareDirection: domain.CompareHigher},
			{Name: "color", Label: "Color", Type: domain.FieldTypeText},
			{Name: "cordless", Label: "Cordless", Type: domain.FieldTypeBoolean},
		},
		Metrics: []domain.MetricDefinition{
			{Name: "price_per_watt", Label: "Price per Watt", Formula: "price / wattage", CompareDirection: domain.CompareLower},
		},
	}
}

func TestValidateSchema(t *testing.T) {
	service := NewSchemaService()

	t.Run("accepts a well-formed schema", func(t *testing.T) {
		valid, errs := service.ValidateSchema(testSchema())
		if !valid {
			t.Errorf("ValidateSchema() = invalid, errors: %v", errs)
		}
	})

	t.Run("rejects duplicate field names", func(t *testing.T) {
		schema := testSchema()
		schema.Fields = append(schema.Fields, domain.FieldDefinition{Name: "price", Label: "Price Again", Type: domain.FieldTypeDecimal})

		valid, errs := service.ValidateSchema(schema)
		if valid {
			t.Error("ValidateSchema() = valid, want invalid for duplicate field")
		}
		if len(errs) == 0 {
			t.Error("expected at least one error")
		}
	})

	t.Run("rejects duplicate metric names", func(t *testing.T) {
		schema := testSchema()
		schema.Metrics = append(schema.Metrics, domain.MetricDefinition{Name: "price_per_watt", Formula: "price * 2"})

		valid, _ := service.ValidateSchema(schema)
		if valid {
			t.Error("ValidateSchema() = valid, want invalid for duplicate metric")
		}
	})

	t.Run("rejects empty field name and label", func(t *testing.T) {
		schema := domain.ProductSchema{
			Fields: []domain.FieldDefinition{
				{Name: "", Label: "", Type: domain.FieldTypeText},
			},
		}

		valid, errs := service.ValidateSchema(schema)
		if valid {
			t.Error("ValidateSchema() = valid, want invalid")
		}
		if len(errs) < 2 {
			t.Errorf("errors = %v, want both name and label violations", errs)
		}
	})

	t.Run("rejects malformed metric formula", func(t *testing.T) {
		schema := testSchema()
		schema.Metrics[0].Formula = "price / / wattage"

		valid, _ := service.ValidateSchema(schema)
		if valid {
			t.Error("ValidateSchema() = valid, want invalid for malformed formula")
		}
	})

	t.Run("collects every violation instead of stopping at the first", func(t *testing.T) {
		schema := domain.ProductSchema{
			Fields: []domain.FieldDefinition{
				{Name: "a", Label: "", Type: domain.FieldTypeText},
				{Name: "a", Label: "A", Type: domain.FieldTypeText},
			},
			Metrics: []domain.MetricDefinition{
				{Name: "m", Formula: "("},
			},
		}

		valid, errs := service.ValidateSchema(schema)
		if valid {
			t.Fatal("ValidateSchema() = valid, want invalid")
		}
		if len(errs) < 3 {
			t.Errorf("errors = %d (%v), want all three violations reported", len(errs), errs)
		}
	})
}

func TestValidateData(t *testing.T) {
	service := NewSchemaService()
	schema := testSchema()

	tests := []struct {
		name  string
		data  map[string]any
		valid bool
	}{
		{
			name:  "valid data",
			data:  map[string]any{"price": 399.0, "wattage": 2200.0, "color": "black", "cordless": false},
			valid: true,
		},
		{
			name:  "optional fields may be absent",
			data:  map[string]any{"price": 399.0},
			valid: true,
		},
		{
			name:  "missing required field",
			data:  map[string]any{"wattage": 2200.0},
			valid: false,
		},
		{
			name:  "wrong type for decimal",
			data:  map[string]any{"price": "cheap"},
			valid: false,
		},
		{
			name:  "numeric string with unit counts as numeric",
			data:  map[string]any{"price": "399.99 USD"},
			valid: true,
		},
		{
			name:  "fractional value for integer field",
			data:  map[string]any{"price": 399.0, "wattage": 2200.5},
			valid: false,
		},
		{
			name:  "whole float for integer field",
			data:  map[string]any{"price": 399.0, "wattage": 2200.0},
			valid: true,
		},
		{
			name:  "wrong type for boolean",
			data:  map[string]any{"price": 399.0, "cordless": "yes"},
			valid: false,
		},
		{
			name:  "wrong type for text",
			data:  map[string]any{"price": 399.0, "color": 42.0},
			valid: false,
		},
		{
			name:  "nil values are treated as absent",
			data:  map[string]any{"price": 399.0, "wattage": nil},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, errs := service.ValidateData(tt.data, schema)
			if valid != tt.valid {
				t.Errorf("ValidateData() = %v (errors: %v), want %v", valid, errs, tt.valid)
			}
		})
	}
}

func TestNormalizeData(t *testing.T) {
	service := NewSchemaService()
	schema := testSchema()

	t.Run("coerces values to declared types", func(t *testing.T) {
		data := map[string]any{
			"price":    "399.99",
			"wattage":  "2200W",
			"color":    "black",
			"cordless": "true",
		}

		normalized := service.NormalizeData(data, schema)

		if normalized["price"] != 399.99 {
			t.Errorf("price = %v (%T), want 399.99", normalized["price"], normalized["price"])
		}
		if normalized["wattage"] != int64(2200) {
			t.Errorf("wattage = %v (%T), want int64(2200)", normalized["wattage"], normalized["wattage"])
		}
		if normalized["cordless"] != true {
			t.Errorf("cordless = %v, want true", normalized["cordless"])
		}
	})

	t.Run("collapses extractor value wrappers", func(t *testing.T) {
		data := map[string]any{
			"price": map[string]any{"value": 1.6, "unit": "gallons"},
		}

		normalized := service.NormalizeData(data, schema)
		if normalized["price"] != 1.6 {
			t.Errorf("price = %v, want 1.6", normalized["price"])
		}
	})

	t.Run("passes uncoercible values through unchanged", func(t *testing.T) {
		data := map[string]any{"price": "call for pricing"}

		normalized := service.NormalizeData(data, schema)
		if normalized["price"] != "call for pricing" {
			t.Errorf("price = %v, want original string", normalized["price"])
		}
	})

	t.Run("drops keys not present in the data", func(t *testing.T) {
		normalized := service.NormalizeData(map[string]any{"price": 10.0}, schema)
		if _, ok := normalized["wattage"]; ok {
			t.Error("wattage should not appear in normalized output")
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		data := map[string]any{"price": "399.99", "wattage": "2200W", "color": "black"}

		once := service.NormalizeData(data, schema)
		twice := service.NormalizeData(once, schema)

		for key, want := range once {
			if twice[key] != want {
				t.Errorf("field %q: second pass = %v, want %v", key, twice[key], want)
			}
		}
	})
}
