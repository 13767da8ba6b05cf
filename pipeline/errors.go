package pipeline

import "fmt"

// UtteranceError ties a failure to the utterance that caused it.
type UtteranceError struct {
	ID   string
	Path string
	Err  error
}

func (e *UtteranceError) Error() string {
	return fmt.Sprintf("utterance %s (%s): %v", e.ID, e.Path, e.Err)
}

func (e *UtteranceError) Unwrap() error { return e.Err }
