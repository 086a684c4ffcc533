package docx

import (
	"fmt"
	"strings"
)

const (
	ReasonUnclosedTag      = "unclosed tag"
	ReasonUnopenedTag      = "unopened tag"
	ReasonEmptyTag         = "empty tag"
	ReasonNestedDelimiters = "nested tag delimiters"
	ReasonUndefinedTag     = "undefined tag"
	ReasonUndefinedImage   = "undefined image"
)

// TagError describes one placeholder that could not be resolved.
type TagError struct {
	Tag     string
	Context string
	Reason  string
	Part    string
}

func (e TagError) String() string {
	return fmt.Sprintf("%s %q in %s near %q", e.Reason, e.Tag, e.Part, e.Context)
}

// RenderError collects every placeholder problem of one render call.
type RenderError struct {
	Errors []TagError
}

func (e *RenderError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, te := range e.Errors {
		parts = append(parts, te.String())
	}
	return fmt.Sprintf("template render failed with %d error(s): %s", len(e.Errors), strings.Join(parts, "; "))
}

// Tags returns the offending tags in the order they were found.
func (e *RenderError) Tags() []string {
	tags := make([]string, len(e.Errors))
	for i, te := range e.Errors {
		tags[i] = te.Tag
	}
	return tags
}
