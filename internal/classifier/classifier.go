package classifier

import (
	"context"
	"errors"
)

// ErrNoFace is returned when the image does not contain a detectable face.
var ErrNoFace = errors.New("no face detected")

// Classification is the analysis of the first face found in an image.
type Classification struct {
	Emotions        map[string]float64
	DominantEmotion string
	Age             float64
	Gender          string
}

// Classifier infers emotions from raw image bytes.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (*Classification, error)
}

// ClassifierError carries any classifier failure other than ErrNoFace.
type ClassifierError struct {
	Status int
	Reason string
	Err    error
}

func (e *ClassifierError) Error() string {
	msg := "classifier: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}
