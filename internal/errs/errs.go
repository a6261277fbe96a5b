/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package errs provides code-classified errors with call-site capture and
// parent chaining, in the style of a trimmed-down enterprise error package:
// no HTTP-framework binding, just Code()/Error()/Is()/Unwrap() plus a Add()
// for building a small hierarchy of causes.
package errs

import (
	"errors"
	"fmt"
	"runtime"
)

// Package-local error code ranges, mirroring the "Min<Package>" convention:
// each package that declares sentinel errors picks a distinct band so codes
// never collide across packages.
const (
	MinPkgCore   = 100
	MinPkgSocket = 200
	MinPkgConfig = 300
)

// Code classifies an error the way an HTTP status code classifies a
// response: a small integer, stable across versions, usable for
// programmatic dispatch instead of string matching on Error().
type Code int

// Error is a code-classified error with an optional parent and the file/line
// of the call site that created it.
type Error struct {
	code   Code
	msg    string
	file   string
	line   int
	parent error
}

// New creates an Error with the given code and message, capturing the
// caller's file and line.
func New(code Code, msg string) *Error {
	_, file, line, _ := runtime.Caller(1)
	return &Error{code: code, msg: msg, file: file, line: line}
}

// WithParent returns a copy of e with parent set as the wrapped cause.
func (e *Error) WithParent(parent error) *Error {
	return &Error{code: e.code, msg: e.msg, file: e.file, line: e.line, parent: parent}
}

// Code returns the error's classification code.
func (e *Error) Code() Code {
	return e.code
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
	}
	return e.msg
}

// Unwrap exposes the parent error to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.parent
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, SomeSentinel) works across wrapping.
func (e *Error) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return o.code == e.code
	}
	return false
}

// File returns the file of the call site that created the error.
func (e *Error) File() string {
	return e.file
}

// Line returns the line of the call site that created the error.
func (e *Error) Line() int {
	return e.line
}
