//go:build !unix

package rlimit

import "errors"

func systemFileDescriptor(newValue int) (current int, max int, err error) {
	return 0, 0, errors.New("rlimit: file descriptor ceiling discovery is only supported on unix platforms")
}
