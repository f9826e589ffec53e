package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError represents a convention configuration error detected while
// resolving an ordering.
//
// Configuration errors are fatal. They are never retried and no partial
// ordering is ever returned alongside one.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Node names the first repeated entry (for cycle errors).
	Node string

	// Path is the visit path from Node back to itself (for cycle errors).
	Path []string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeCyclicDependency indicates the dependency graph has a cycle.
	ErrCodeCyclicDependency ConfigErrorCode = "CYCLIC_DEPENDENCY"

	// ErrCodeUnknownHostType indicates a host type outside the known set.
	ErrCodeUnknownHostType ConfigErrorCode = "UNKNOWN_HOST_TYPE"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %s (node=%s, path=%s)", e.Code, e.Message, e.Node, strings.Join(e.Path, " -> "))
	}
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCycleError returns true if the error is a cyclic dependency error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeCyclicDependency
	}
	return false
}

// IsUnknownHostError returns true if the error reports an unknown host type.
func IsUnknownHostError(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeUnknownHostType
	}
	return false
}

// NewCycleError creates a ConfigError for a dependency cycle.
func NewCycleError(node string, path []string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeCyclicDependency,
		Message: "convention dependency graph contains a cycle",
		Node:    node,
		Path:    path,
	}
}

func newUnknownHostError(host fmt.Stringer) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnknownHostType,
		Message: fmt.Sprintf("unknown host type %s", host),
	}
}
