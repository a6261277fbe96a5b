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

// Package perm provides a type-safe octal file-permission value, used by
// socket/config for the mode a listening Unix-domain socket file is
// created with.
package perm

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Perm wraps os.FileMode the way an octal config value is usually
// expressed ("0644", "0770"), rather than a FileMode literal.
type Perm os.FileMode

// Parse reads an octal string ("0644") into a Perm.
func Parse(s string) (Perm, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	return Perm(v), nil
}

// ParseFileMode converts an os.FileMode directly.
func ParseFileMode(m os.FileMode) Perm {
	return Perm(m)
}

// FileMode returns the os.FileMode this Perm represents.
func (p Perm) FileMode() os.FileMode {
	return os.FileMode(p)
}

// String renders the permission as a four-digit octal string.
func (p Perm) String() string {
	return "0" + strconv.FormatUint(uint64(p)&0777, 8)
}

// MarshalYAML renders as the octal string form.
func (p Perm) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML parses the octal string form.
func (p *Perm) UnmarshalYAML(value *yaml.Node) error {
	v, err := Parse(value.Value)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
