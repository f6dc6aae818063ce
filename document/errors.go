package document

import (
	"errors"
	"fmt"
)

// Sentinel errors for document parsing.
var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("document: parse error")

	// ErrUnsupportedFeature is matched by every *UnsupportedFeatureError.
	ErrUnsupportedFeature = errors.New("document: unsupported feature")
)

// ParseError reports malformed input. A document that fails with a
// ParseError is never partially returned.
type ParseError struct {
	// Line is the 1-based input line where the problem was detected,
	// or 0 when unknown.
	Line int
	// Element is the local name of the element being parsed, if any.
	Element string
	// Msg describes the problem.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	switch {
	case e.Line > 0 && e.Element != "":
		return fmt.Sprintf("document: parse error at line %d in <%s>: %s", e.Line, e.Element, msg)
	case e.Line > 0:
		return fmt.Sprintf("document: parse error at line %d: %s", e.Line, msg)
	case e.Element != "":
		return fmt.Sprintf("document: parse error in <%s>: %s", e.Element, msg)
	}
	return "document: parse error: " + msg
}

// Is makes errors.Is(err, ErrParse) succeed.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedFeatureError reports an element, attribute or paint server the
// parser does not implement. It is returned only in Strict mode; in Warn
// mode the same information is recorded as a Warning.
type UnsupportedFeatureError struct {
	Line    int
	Element string
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("document: unsupported feature %q in <%s> at line %d", e.Feature, e.Element, e.Line)
	}
	return fmt.Sprintf("document: unsupported feature %q in <%s>", e.Feature, e.Element)
}

// Is makes errors.Is(err, ErrUnsupportedFeature) succeed.
func (e *UnsupportedFeatureError) Is(target error) bool { return target == ErrUnsupportedFeature }

// Warning is a recoverable diagnostic recorded while parsing.
type Warning struct {
	Line    int
	Element string
	ID      string
	Feature string
	Msg     string
}

func (w Warning) String() string {
	s := fmt.Sprintf("<%s>", w.Element)
	if w.ID != "" {
		s += " #" + w.ID
	}
	if w.Line > 0 {
		s += fmt.Sprintf(" line %d", w.Line)
	}
	if w.Feature != "" {
		s += ": " + w.Feature
	}
	if w.Msg != "" {
		s += ": " + w.Msg
	}
	return s
}
