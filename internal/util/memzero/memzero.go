// Package memzero wipes secrets held in byte slices and fixed-size keys.
package memzero

import (
	"crypto/subtle"
	"runtime"
)

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
	runtime.KeepAlive(b)
}

// Zero32 wipes a 32-byte key in place.
func Zero32(k *[32]byte) {
	if k == nil {
		return
	}
	Zero(k[:])
}
