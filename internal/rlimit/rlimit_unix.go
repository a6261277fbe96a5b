//go:build unix

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

package rlimit

import "golang.org/x/sys/unix"

// systemFileDescriptor queries, and optionally raises, RLIMIT_NOFILE.
// newValue <= 0 or <= the current soft limit is a pure query.
func systemFileDescriptor(newValue int) (current int, max int, err error) {
	var lim unix.Rlimit

	if err = unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 0, 0, err
	}

	if newValue <= 0 || uint64(newValue) <= lim.Cur {
		return clampInt(lim.Cur), clampInt(lim.Max), nil
	}

	if uint64(newValue) > lim.Max {
		lim.Max = uint64(newValue)
	}
	lim.Cur = uint64(newValue)

	if err = unix.Setrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 0, 0, err
	}

	if err = unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 0, 0, err
	}
	return clampInt(lim.Cur), clampInt(lim.Max), nil
}
