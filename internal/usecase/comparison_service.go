package usecase

import (
	"reflect"
	"sync"

	"github.com/competitive-edge/backend/internal/domain"
)

// ComparisonService produces field-by-field and metric-by-metric deltas
// between a product and a competitor listing. Formulas are parsed once per
// distinct source string and the trees reused across comparisons.
type ComparisonService struct {
	mu       sync.RWMutex
	formulas map[string]*Formula
}

// NewComparisonService creates a new comparison service
func NewComparisonService() *ComparisonService {
	return &ComparisonService{formulas: make(map[string]*Formula)}
}

// Compare walks the schema and compares user data against competitor data.
// A field is skipped when either side has no value. Alerts follow the field's
// compare direction: for "lower" fields a strictly lower competitor value is a
// red alert; for "higher" fields a strictly higher competitor value is a
// yellow alert. Equal values never alert.
func (s *ComparisonService) Compare(schema domain.ProductSchema, userData, competitorData map[string]any) domain.ComparisonResult {
	result := domain.ComparisonResult{
		Fields:  make(map[string]domain.FieldComparison),
		Metrics: make(map[string]domain.MetricComparison),
	}

	for _, field := range schema.Fields {
		userValue, userOK := userData[field.Name]
		compValue, compOK := competitorData[field.Name]
		if !userOK || !compOK || userValue == nil || compValue == nil {
			continue
		}
		result.Fields[field.Name] = compareField(field, userValue, compValue)
	}

	for _, metric := range schema.Metrics {
		formula, err := s.formula(metric.Formula)
		if err != nil {
			// Malformed formulas are rejected at schema validation; a schema
			// that slipped through just loses this metric.
			continue
		}
		result.Metrics[metric.Name] = compareMetric(metric, formula, userData, competitorData)
	}

	return result
}

func compareField(field domain.FieldDefinition, userValue, compValue any) domain.FieldComparison {
	if field.Type.IsNumeric() {
		userNum, userOK := domain.NumericValue(userValue)
		compNum, compOK := domain.NumericValue(compValue)
		if userOK && compOK {
			diff := compNum - userNum
			comparison := domain.FieldComparison{
				User:       userValue,
				Competitor: compValue,
				Difference: &diff,
			}
			switch {
			case compNum == userNum:
				comparison.Advantage = domain.AdvantageEqual
			case field.CompareDirection == domain.CompareLower && compNum < userNum:
				comparison.Advantage = domain.AdvantageCompetitor
				comparison.Alert = domain.AlertRed
			case field.CompareDirection == domain.CompareHigher && compNum > userNum:
				comparison.Advantage = domain.AdvantageCompetitor
				comparison.Alert = domain.AlertYellow
			default:
				comparison.Advantage = domain.AdvantageUser
			}
			return comparison
		}
		// Values that refuse numeric coercion fall through to a plain
		// equality comparison without alerting.
	}

	comparison := domain.FieldComparison{
		User:       userValue,
		Competitor: compValue,
		Advantage:  domain.AdvantageDifferent,
	}
	if valuesEqual(userValue, compValue) {
		comparison.Advantage = domain.AdvantageEqual
	}
	return comparison
}

// compareMetric evaluates the formula on each side independently. A nil value
// on either side (missing operand or division guard) means no alert for that
// metric. A competitor advantage in the metric's declared direction raises a
// yellow alert in both directions; metrics never go red.
func compareMetric(metric domain.MetricDefinition, formula *Formula, userData, competitorData map[string]any) domain.MetricComparison {
	userValue := formula.Evaluate(userData)
	compValue := formula.Evaluate(competitorData)

	comparison := domain.MetricComparison{
		User:       userValue,
		Competitor: compValue,
	}
	if userValue == nil || compValue == nil {
		return comparison
	}

	diff := *compValue - *userValue
	comparison.Difference = &diff

	switch {
	case *compValue == *userValue:
		comparison.Advantage = domain.AdvantageEqual
	case metric.CompareDirection == domain.CompareLower && *compValue < *userValue:
		comparison.Advantage = domain.AdvantageCompetitor
		comparison.Alert = domain.AlertYellow
	case metric.CompareDirection == domain.CompareHigher && *compValue > *userValue:
		comparison.Advantage = domain.AdvantageCompetitor
		comparison.Alert = domain.AlertYellow
	default:
		comparison.Advantage = domain.AdvantageUser
	}

	return comparison
}

func (s *ComparisonService) formula(source string) (*Formula, error) {
	s.mu.RLock()
	cached, ok := s.formulas[source]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	parsed, err := ParseFormula(source)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.formulas[source] = parsed
	s.mu.Unlock()
	return parsed, nil
}

func valuesEqual(a, b any) bool {
	if sa, okA := a.(string); okA {
		if sb, okB := b.(string); okB {
			return sa == sb
		}
	}
	return reflect.DeepEqual(a, b)
}
