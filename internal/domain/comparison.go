package domain

// Alert flags a competitor advantage on one field or metric.
type Alert string

const (
	AlertNone   Alert = ""
	AlertYellow Alert = "yellow"
	AlertRed    Alert = "red"
)

// Advantage says which side a comparison favors.
type Advantage string

const (
	AdvantageUser       Advantage = "user"
	AdvantageCompetitor Advantage = "competitor"
	AdvantageEqual      Advantage = "equal"
	AdvantageDifferent  Advantage = "different" // non-numeric values that differ
)

// FieldComparison is the side-by-side result for one schema field.
// Difference is competitor minus user and is nil for non-numeric values.
type FieldComparison struct {
	User       any       `json:"user"`
	Competitor any       `json:"competitor"`
	Difference *float64  `json:"difference"`
	Advantage  Advantage `json:"advantage"`
	Alert      Alert     `json:"alert,omitempty"`
}

// MetricComparison is the evaluated-formula result for one metric. A nil value
// means the formula could not be evaluated for that side (missing operand or
// division guard); no alert is raised in that case.
type MetricComparison struct {
	User       *float64  `json:"user"`
	Competitor *float64  `json:"competitor"`
	Difference *float64  `json:"difference"`
	Advantage  Advantage `json:"advantage,omitempty"`
	Alert      Alert     `json:"alert,omitempty"`
}

// ComparisonResult is a full field-by-field, metric-by-metric delta between a
// product and one competitor listing.
type ComparisonResult struct {
	Fields  map[string]FieldComparison  `json:"fields"`
	Metrics map[string]MetricComparison `json:"metrics"`
}
