package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/competitive-edge/backend/internal/domain"
)

// maxContentChars caps the page text sent to the model; retailer pages run
// long and the useful specs sit near the top.
const maxContentChars = 30000

// Extract pulls schema-shaped structured data out of raw page text. The
// schema drives the prompt, so extraction generalizes across arbitrary
// product types with no hardcoded fields.
func (c *Client) Extract(ctx context.Context, rawText string, schema domain.ProductSchema) (*domain.Extraction, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("%w: empty page text", domain.ErrExtractionFailed)
	}
	if len(rawText) > maxContentChars {
		rawText = rawText[:maxContentChars]
	}

	response, err := c.generate(ctx, buildExtractionPrompt(schema)+rawText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	data, err := parseExtractionResponse(response)
	if err != nil {
		return nil, err
	}

	extraction := &domain.Extraction{Data: data}
	if imageURL, ok := data["image_url"].(string); ok {
		extraction.ImageURL = imageURL
		delete(data, "image_url")
	}
	return extraction, nil
}

// buildExtractionPrompt renders the schema's fields into extraction
// instructions for the model.
func buildExtractionPrompt(schema domain.ProductSchema) string {
	var fields []string

	hasName := false
	for _, field := range schema.Fields {
		if field.Name == "name" {
			hasName = true
		}
		desc := fmt.Sprintf("- %s (%s", field.Name, field.Type)
		if field.Unit != "" {
			desc += ", unit: " + field.Unit
		}
		desc += "): " + field.Label
		fields = append(fields, desc)
	}
	if !hasName {
		fields = append([]string{"- name (text): Product name or title"}, fields...)
	}

	return fmt.Sprintf(`Extract the following product specifications from the provided product page content.

Fields to extract:
%s

Return a JSON object with the exact field names as keys. Use null for fields that cannot be found.
Always extract the product name/title as the "name" field; it is the main heading of the page.
For numeric fields return plain numbers, not strings: decimals for decimal fields, whole numbers for integer fields.
For price fields remove currency symbols and thousands separators.
If a value's unit on the page differs from the schema unit, return an object {"value": <number>, "unit": "<page unit>"} instead of a bare number.

Product page content:
`, strings.Join(fields, "\n"))
}

func parseExtractionResponse(response string) (map[string]any, error) {
	cleaned := strings.TrimSpace(response)
	// Models occasionally wrap JSON in markdown fences despite the MIME hint.
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: unparseable model response: %v", domain.ErrExtractionFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no data extracted", domain.ErrExtractionFailed)
	}

	// null entries carry no information; drop them so validation and scoring
	// see absent fields, not nil values.
	for key, value := range data {
		if value == nil {
			delete(data, key)
		}
	}
	return data, nil
}
