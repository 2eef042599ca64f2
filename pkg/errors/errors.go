package errors

import (
	"fmt"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures manifest and host configuration validation issues.
// Path is set once the failing document is known.
type ValidationError struct {
	Path    string
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// WithPath returns err with path attached when err is a ValidationError
// without one. Other errors are returned unchanged.
func WithPath(err error, path string) error {
	ve, ok := err.(*ValidationError)
	if !ok || ve == nil || ve.Path != "" {
		return err
	}
	located := *ve
	located.Path = path
	return &located
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	location := e.Field
	switch {
	case e.Path != "" && e.Field != "":
		location = e.Path + ": " + e.Field
	case e.Path != "":
		location = e.Path
	}
	if location == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", location, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PluginError reports a plugin that was loaded from a host file but could not
// be registered or removed.
type PluginError struct {
	Plugin  string
	Source  string
	Message string
	Err     error
}

// NewPluginError constructs a PluginError for the given plugin id.
func NewPluginError(plugin string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &PluginError{Plugin: plugin, Message: message, Err: err}
}

// NewPluginSourceError constructs a PluginError that also names the file the
// plugin was loaded from.
func NewPluginSourceError(plugin, source string, err error) error {
	pe := NewPluginError(plugin, err).(*PluginError)
	pe.Source = source
	return pe
}

func (e *PluginError) Error() string {
	if e == nil {
		return ""
	}
	if e.Plugin != "" && e.Source != "" {
		return fmt.Sprintf("plugin error [%s] (%s): %s", e.Plugin, e.Source, e.Message)
	}
	if e.Plugin != "" {
		return fmt.Sprintf("plugin error [%s]: %s", e.Plugin, e.Message)
	}
	return fmt.Sprintf("plugin error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *PluginError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
