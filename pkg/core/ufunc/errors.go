// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// ErrOperator is matched (with errors.Is) by every error reported by a failing operator.
var ErrOperator = errors.New("operator failed")

// OperatorError reports a failure (a panic) raised by an operator during an operation.
//
// Elements of the output written before the failure keep their new values.
type OperatorError struct {
	// Op is the name of the operator.
	Op string

	// Err is the error the operator panicked with.
	Err error
}

// Error implements error.
func (e *OperatorError) Error() string {
	return fmt.Sprintf("operator %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the operator's error.
func (e *OperatorError) Unwrap() error {
	return e.Err
}

// Is makes OperatorError match ErrOperator.
func (e *OperatorError) Is(target error) bool {
	return target == ErrOperator
}

// Format implements fmt.Formatter, and prints the stack of the wrapped error with "%+v".
func (e *OperatorError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		_, _ = fmt.Fprintf(s, "operator %s failed: %+v", e.Op, e.Err)
		return
	}
	_, _ = fmt.Fprint(s, e.Error())
}

// operatorError converts a recovered panic value to an *OperatorError.
func operatorError(op string, recovered any) error {
	var err error
	switch value := recovered.(type) {
	case *OperatorError:
		return value
	case error:
		err = value
	default:
		err = errors.Errorf("%v", value)
	}
	return &OperatorError{Op: op, Err: err}
}

// catchOperator runs fn and converts any panic into an *OperatorError.
func catchOperator(op string, fn func()) error {
	recovered := exceptions.Try(fn)
	if recovered == nil {
		return nil
	}
	return operatorError(op, recovered)
}
