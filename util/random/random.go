package random

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Uint64 returns a cryptographically random uint64 value.
func Uint64() (uint64, error) {
	return uint64FromReader(rand.Reader)
}

// uint64FromReader returns a uint64 read from the provided reader. It is
// split out from Uint64 so tests can exercise the error paths with a
// deterministic reader.
func uint64FromReader(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.WithStack(err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
