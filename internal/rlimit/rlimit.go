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

// Package rlimit queries and raises the process's open-file descriptor
// ceiling, memoising the result after the first call.
package rlimit

import (
	"math"
	"sync"
)

var (
	once   sync.Once
	cached int
	cerr   error
)

// Ceiling raises the soft RLIMIT_NOFILE to the hard limit and returns the
// resulting ceiling. The syscall is only performed once per process; later
// calls return the memoised value.
func Ceiling() (int, error) {
	once.Do(func() {
		cur, max, err := systemFileDescriptor(0)
		if err != nil {
			cerr = err
			return
		}
		if max > cur {
			cur, _, err = systemFileDescriptor(max)
			if err != nil {
				cerr = err
				return
			}
		}
		cached = cur
	})
	return cached, cerr
}

func clampInt(v uint64) int {
	if v > uint64(math.MaxInt) {
		return math.MaxInt
	}
	return int(v)
}
