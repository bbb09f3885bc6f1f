package model

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so callers can branch without string matching.
type Kind string

const (
	KindDownload    Kind = "download"
	KindMissingFile Kind = "missing_file"
	KindLoad        Kind = "load"
	KindPreprocess  Kind = "preprocess"
	KindInference   Kind = "inference"
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, op string, format string, args ...any) error {
	return newError(kind, op, fmt.Errorf(format, args...))
}

// Wrap attaches a kind to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return newError(kind, op, err)
}

// KindOf reports the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
