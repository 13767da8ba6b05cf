package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cwbudde/algo-formant/internal/matrixio"
)

// Predictor maps a normalized envelope sequence of any length to one raw
// parameter vector per frame. Implementations keep no state between
// utterances.
type Predictor interface {
	Predict(ctx context.Context, id string, frames [][]float64) ([][]float64, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, id string, frames [][]float64) ([][]float64, error)

// Predict calls f.
func (f PredictorFunc) Predict(ctx context.Context, id string, frames [][]float64) ([][]float64, error) {
	return f(ctx, id, frames)
}

// MatrixPredictor replays predictor output computed elsewhere. The output
// for utterance id is read from Dir/<id><Ext> as a text matrix.
type MatrixPredictor struct {
	Dir string
	Ext string
}

// Predict implements Predictor.
func (m MatrixPredictor) Predict(ctx context.Context, id string, frames [][]float64) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(m.Dir, id+m.Ext)
	rows, err := matrixio.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay predictor: %w", err)
	}
	return rows, nil
}
