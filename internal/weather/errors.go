package weather

import "errors"

var (
	// ErrInvalidInput is returned when a request field is empty or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a place name cannot be resolved.
	ErrNotFound = errors.New("place not found")
	// ErrServiceUnavailable is returned when an upstream call fails, times out or returns malformed data.
	ErrServiceUnavailable = errors.New("upstream service unavailable")
	// ErrModelUnavailable is returned when the prediction model was not loaded.
	ErrModelUnavailable = errors.New("prediction model unavailable")
	// ErrPredictionFailed is returned when the predictor cannot produce a usable value.
	ErrPredictionFailed = errors.New("prediction failed")
)

// Kind classifies an error into one of the failure kinds callers branch on.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNotFound
	KindServiceUnavailable
	KindModelUnavailable
	KindPredictionFailed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindModelUnavailable:
		return "model_unavailable"
	case KindPredictionFailed:
		return "prediction_failed"
	default:
		return "unknown"
	}
}

// KindOf returns the failure kind wrapped by err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrServiceUnavailable):
		return KindServiceUnavailable
	case errors.Is(err, ErrModelUnavailable):
		return KindModelUnavailable
	case errors.Is(err, ErrPredictionFailed):
		return KindPredictionFailed
	default:
		return KindUnknown
	}
}
