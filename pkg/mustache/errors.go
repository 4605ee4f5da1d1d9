package mustache

import (
	"errors"
	"fmt"
)

var (
	ErrUnclosedTag     = errors.New("unclosed tag")
	ErrUnclosedSection = errors.New("unclosed section")
	ErrUnexpectedClose = errors.New("unexpected closing tag")
	ErrEmptyTag        = errors.New("empty tag")
	// ErrPartialDepth is returned when partials include each other deeper
	// than maxPartialDepth, which almost always means a cycle.
	ErrPartialDepth = errors.New("partials nested too deeply")
)

// ParseError reports a syntax error in a template source.
type ParseError struct {
	Template string
	Line     int
	Column   int
	Tag      string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("parse error in %s at line %d, column %d near '%s': %v", e.Template, e.Line, e.Column, e.Tag, e.Err)
	}
	return fmt.Sprintf("parse error in %s at line %d, column %d: %v", e.Template, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
