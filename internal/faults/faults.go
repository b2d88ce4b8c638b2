// Package faults defines the error taxonomy shared by the reconciliation
// pipeline.
//
// Errors are tagged with sentinel markers so callers can classify a failure
// without string matching: load, schema, and persistence failures abort the
// run, everything else is recorded against the resource it belongs to and the
// run continues. Wrap attaches stage and operation context the same way every
// pipeline component does, keeping messages grep-able across organize and
// repair.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLoad marks an unreadable or syntactically invalid project file.
	ErrLoad = errors.New("load error")
	// ErrSchema marks a document missing a required section.
	ErrSchema = errors.New("schema error")
	// ErrResource marks a resource entry missing mandatory fields.
	ErrResource = errors.New("resource error")
	// ErrLink marks a timeline block whose reference cannot be resolved.
	ErrLink = errors.New("link resolution error")
	// ErrCollision marks two resources computing the same destination name.
	ErrCollision = errors.New("destination collision")
	// ErrIO marks a single failed copy, move, or write.
	ErrIO = errors.New("io error")
	// ErrPersistence marks a failed final manifest write. Files may already
	// have moved when this surfaces, so it carries the highest severity.
	ErrPersistence = errors.New("persistence error")
)

// Wrap tags err with marker and prefixes stage/operation context. A nil
// marker falls back to ErrIO.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether err must abort the whole run rather than a single
// resource.
func Fatal(err error) bool {
	return errors.Is(err, ErrLoad) || errors.Is(err, ErrSchema) || errors.Is(err, ErrPersistence)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
