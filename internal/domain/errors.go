package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedSceneGraph = errors.New("malformed scene graph")
	ErrConfiguration       = errors.New("configuration error")
	ErrWriteFailure        = errors.New("write failure")
)

// MalformedSceneGraphError reports a record that violates structural or
// referential integrity
type MalformedSceneGraphError struct {
	SceneID string
	Reason  string
	Err     error
}

// NewMalformedError creates a MalformedSceneGraphError with a formatted reason
func NewMalformedError(sceneID, format string, args ...any) *MalformedSceneGraphError {
	return &MalformedSceneGraphError{
		SceneID: sceneID,
		Reason:  fmt.Sprintf(format, args...),
	}
}

func (e *MalformedSceneGraphError) Error() string {
	msg := fmt.Sprintf("scene %s: malformed scene graph: %s", e.SceneID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedSceneGraphError) Is(target error) bool {
	return target == ErrMalformedSceneGraph
}

func (e *MalformedSceneGraphError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports an invalid run parameter
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// WriteFailureError reports an output that could not be written for a scene
type WriteFailureError struct {
	SceneID string
	Path    string
	Err     error
}

func (e *WriteFailureError) Error() string {
	return fmt.Sprintf("scene %s: failed to write %s: %v", e.SceneID, e.Path, e.Err)
}

func (e *WriteFailureError) Is(target error) bool {
	return target == ErrWriteFailure
}

func (e *WriteFailureError) Unwrap() error {
	return e.Err
}
