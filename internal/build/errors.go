package build

import (
	"errors"
	"fmt"
)

// Stage names a step of the build pipeline.
type Stage string

const (
	StageConfig      Stage = "config"
	StageClean       Stage = "clean"
	StagePassthrough Stage = "passthrough"
	StageData        Stage = "data"
	StageDiscover    Stage = "discover"
	StageRender      Stage = "render"
	StageWrite       Stage = "write"
	StageAfterBuild  Stage = "after-build"
)

// ErrDuplicateOutput is returned when two templates write the same file.
var ErrDuplicateOutput = errors.New("duplicate output path")

// Error is a build failure tied to a pipeline stage and, when known, the
// file being processed.
type Error struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failed(stage Stage, path string, err error) *Error {
	return &Error{Stage: stage, Path: path, Err: err}
}
