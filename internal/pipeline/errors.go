package pipeline

import (
	"errors"
	"fmt"
)

// Stage failure taxonomy. Every StageError unwraps to one of these.
var (
	ErrParse                       = errors.New("parse failed")
	ErrClassify                    = errors.New("classification failed")
	ErrExtract                     = errors.New("extraction failed")
	ErrValidate                    = errors.New("validation failed")
	ErrLowQualityOrUnsupportedType = errors.New("document quality too low or unsupported type")
	ErrNoDataExtracted             = errors.New("no data extracted")
)

// Stage names a pipeline stage.
type Stage string

const (
	StageParse    Stage = "parse"
	StageClassify Stage = "classify"
	StageExtract  Stage = "extract"
	StageValidate Stage = "validate"
)

func (s Stage) sentinel() error {
	switch s {
	case StageParse:
		return ErrParse
	case StageClassify:
		return ErrClassify
	case StageExtract:
		return ErrExtract
	default:
		return ErrValidate
	}
}

// StageError records which stage failed and why. errors.Is matches both the
// stage sentinel and the underlying collaborator error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage.sentinel(), e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Stage.sentinel(), e.Err}
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
