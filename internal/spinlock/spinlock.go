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

// Package spinlock provides a short-term mutual-exclusion primitive for
// critical sections that are expected to be held briefly, including the
// specific syscalls (read/write/flush via a hook table) that the socket
// core documents as callable while the lock is held.
package spinlock

import (
	"runtime"
	"sync/atomic"
)

// Locker is a spinning mutual-exclusion lock. The zero value is unlocked
// and ready to use.
type Locker struct {
	state atomic.Bool
}

// Lock spins until the lock is acquired. Callers must not block or perform
// syscalls while holding it, except for read/write/flush calls made through
// a connection's hook table.
func (l *Locker) Lock() {
	spins := 0
	for !l.state.CompareAndSwap(false, true) {
		spins++
		if spins > 64 {
			runtime.Gosched()
			spins = 0
		}
	}
}

// TryLock attempts to acquire the lock without spinning, returning false if
// it is already held.
func (l *Locker) TryLock() bool {
	return l.state.CompareAndSwap(false, true)
}

// Unlock releases the lock. Unlocking a lock that is not held is a caller
// error and will corrupt the state for the next acquirer.
func (l *Locker) Unlock() {
	l.state.Store(false)
}
