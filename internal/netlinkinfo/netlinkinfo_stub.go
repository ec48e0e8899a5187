//go:build !linux

package netlinkinfo

import "errors"

var errUnsupported = errors.New("netlinkinfo: not supported on this platform")

// List is unavailable outside Linux; the kernel-queue runtime itself is
// Linux-only so this keeps the same platform boundary.
func List() ([]Interface, error) {
	return nil, errUnsupported
}

// ByName is unavailable outside Linux.
func ByName(name string) (Interface, error) {
	return Interface{}, errUnsupported
}
