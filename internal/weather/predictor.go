package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// Features is the input vector of the tomorrow-temperature predictor.
type Features struct {
	TempMin       float64
	TempMax       float64
	Precipitation float64
	WindSpeed     float64
	Month         int
	Day           int
}

// featureNames fixes the order of Features in model input vectors.
var featureNames = []string{"temp_min", "temp_max", "precipitation", "wind_speed", "month", "day"}

// Vector returns the features in model input order.
func (f Features) Vector() []float64 {
	return []float64{f.TempMin, f.TempMax, f.Precipitation, f.WindSpeed, float64(f.Month), float64(f.Day)}
}

// BuildFeatures derives the predictor input from a live observation.
// Month and Day are taken from the calendar date one day after now.
func BuildFeatures(current CurrentConditions, now time.Time) Features {
	tomorrow := DateOf(now).AddDays(1)
	return Features{
		TempMin:       current.Temperature - 2,
		TempMax:       current.Temperature + 2,
		Precipitation: current.Precipitation,
		WindSpeed:     current.WindSpeed,
		Month:         int(tomorrow.Month),
		Day:           tomorrow.Day,
	}
}

// Predictor predicts tomorrow's average temperature.
type Predictor interface {
	Name() string
	// Ready reports whether the predictor can serve predictions.
	Ready() bool
	PredictTomorrowAvg(ctx context.Context, f Features) (float64, error)
}

// OffsetPredictor predicts tomorrow's average as today's temperature plus a constant offset.
type OffsetPredictor struct {
	Offset float64
}

// DefaultPredictorOffset is the offset applied by the heuristic predictor.
const DefaultPredictorOffset = 0.8

func NewOffsetPredictor(offset float64) *OffsetPredictor {
	return &OffsetPredictor{Offset: offset}
}

func (p *OffsetPredictor) Name() string { return "offset" }

func (p *OffsetPredictor) Ready() bool { return true }

func (p *OffsetPredictor) PredictTomorrowAvg(_ context.Context, f Features) (float64, error) {
	current := (f.TempMin + f.TempMax) / 2
	v := current + p.Offset
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite input temperature", ErrPredictionFailed)
	}
	return v, nil
}

// Model is a pre-trained regression artifact mapping a feature vector to a scalar.
type Model interface {
	Predict(x []float64) (float64, error)
}

// ModelPredictor serves predictions from a Model loaded once at startup.
// A nil model makes every prediction fail with ErrModelUnavailable.
type ModelPredictor struct {
	model Model
}

func NewModelPredictor(model Model) *ModelPredictor {
	return &ModelPredictor{model: model}
}

func (p *ModelPredictor) Name() string { return "model" }

func (p *ModelPredictor) Ready() bool { return p.model != nil }

func (p *ModelPredictor) PredictTomorrowAvg(ctx context.Context, f Features) (v float64, err error) {
	if p.model == nil {
		return 0, ErrModelUnavailable
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}

	x := f.Vector()
	for i, xi := range x {
		if math.IsNaN(xi) || math.IsInf(xi, 0) {
			return 0, fmt.Errorf("%w: feature %s is not finite", ErrPredictionFailed, featureNames[i])
		}
	}

	// The model is an external artifact; contain any fault it raises.
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, fmt.Errorf("%w: model panicked: %v", ErrPredictionFailed, r)
		}
	}()

	v, err = p.model.Predict(x)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: model returned a non-finite value", ErrPredictionFailed)
	}
	return v, nil
}

// LinearModel is a linear regression artifact stored as JSON:
//
//	{"name": "...", "intercept": 1.2, "coefficients": {"temp_min": 0.4, ...}}
//
// Coefficients are keyed by feature name; missing features weigh zero.
type LinearModel struct {
	Name         string             `json:"name"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`

	weights []float64
}

// LoadLinearModel reads and validates a linear model artifact from path.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if err := m.compile(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

// NewLinearModel builds a ready-to-use linear model from named coefficients.
func NewLinearModel(name string, intercept float64, coefficients map[string]float64) (*LinearModel, error) {
	m := &LinearModel{Name: name, Intercept: intercept, Coefficients: coefficients}
	if err := m.compile(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *LinearModel) compile() error {
	if len(m.Coefficients) == 0 {
		return fmt.Errorf("no coefficients")
	}
	known := make(map[string]bool, len(featureNames))
	for _, name := range featureNames {
		known[name] = true
	}
	for name := range m.Coefficients {
		if !known[name] {
			return fmt.Errorf("unknown feature %q", name)
		}
	}

	m.weights = make([]float64, len(featureNames))
	for i, name := range featureNames {
		m.weights[i] = m.Coefficients[name]
	}
	return nil
}

// Predict returns intercept + w·x.
func (m *LinearModel) Predict(x []float64) (float64, error) {
	if m.weights == nil {
		return 0, fmt.Errorf("model %q is not compiled", m.Name)
	}
	if len(x) != len(m.weights) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.weights), len(x))
	}

	y := m.Intercept
	for i, w := range m.weights {
		y += w * x[i]
	}
	return y, nil
}
