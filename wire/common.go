// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/coinflow/coinflowd/util/binaryserializer"
	"github.com/pkg/errors"
)

const (
	// MaxVarIntPayload is the maximum payload size for a variable length
	// integer.
	MaxVarIntPayload = 9
)

var (
	// littleEndian is a convenience variable since binary.LittleEndian is
	// quite long.
	littleEndian = binary.LittleEndian

	// bigEndian is a convenience variable since binary.BigEndian is quite
	// long.
	bigEndian = binary.BigEndian
)

// uint32Time represents a unix timestamp encoded with a uint32. It is used as
// a way to signal the readElement function how to decode a timestamp into a
// Go time.Time since it is otherwise ambiguous.
type uint32Time time.Time

// int64Time represents a unix timestamp encoded with an int64. It is used as
// a way to signal the readElement function how to decode a timestamp into a
// Go time.Time since it is otherwise ambiguous.
type int64Time time.Time

// truncatedInput normalizes short-read failures into a typed MessageError so
// callers can tell a truncated message apart from transport failures.
func truncatedInput(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return messageError(op, ErrTruncatedInput,
			"unexpected end of input")
	}
	return err
}

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func readElement(r io.Reader, element interface{}) error {
	// Attempt to read the element based on the concrete type via fast
	// type assertions first.
	switch e := element.(type) {
	case *int32:
		rv, err := binaryserializer.Uint32(r, littleEndian)
		if err != nil {
			return truncatedInput("readElement", err)
		}
		*e = int32(rv)
		return nil

	case *uint32:
		rv, err := binaryserializer.Uint32(r, littleEndian)
		if err != nil {
			return truncatedInput("readElement", err)
		}
		*e = rv
		return nil

	case *int64:
		rv, err := binaryserializer.Uint64(r, littleEndian)
		if err != nil {
			return truncatedInput("readElement", err)
		}
		*e = int64(rv)
		return nil

	case *uint64:
		rv, err := binaryserializer.Uint64(r, littleEndian)
		if err != nil {
			return truncatedInput("readElement", err)
		}
		*e = rv
		return nil

	case *bool:
		rv, err := binaryserializer.Uint8(r)
		if err != nil {
			return truncatedInput("readElement", err)
		}
		*e = rv != 0x00
		return nil

	// Unix timestamp encoded as a uint32.
	case *uint32Time:
		rv, err := binaryserializer.Uint32(r, littleEndian)
		if err != nil {
			return truncatedInput("readElement", err)
		}
		*e = uint32Time(time.Unix(int64(rv), 0))
		return nil

	// Unix timestamp encoded as an int64.
	case *int64Time:
		rv, err := binaryserializer.Uint64(r, littleEndian)
		if err != nil {
			return truncatedInput("readElement", err)
		}
		*e = int64Time(time.Unix(int64(rv), 0))
		return nil

	// Message header checksum.
	case *[4]byte:
		_, err := io.ReadFull(r, e[:])
		if err != nil {
			return truncatedInput("readElement", errors.WithStack(err))
		}
		return nil

	// Message header command.
	case *[CommandSize]uint8:
		_, err := io.ReadFull(r, e[:])
		if err != nil {
			return truncatedInput("readElement", errors.WithStack(err))
		}
		return nil

	// IP address.
	case *[16]byte:
		_, err := io.ReadFull(r, e[:])
		if err != nil {
			return truncatedInput("readElement", errors.WithStack(err))
		}
		return nil

	case *ServiceFlag:
		rv, err := binaryserializer.Uint64(r, littleEndian)
		if err != nil {
			return truncatedInput("readElement", err)
		}
		*e = ServiceFlag(rv)
		return nil

	case *CoinflowNet:
		rv, err := binaryserializer.Uint32(r, littleEndian)
		if err != nil {
			return truncatedInput("readElement", err)
		}
		*e = CoinflowNet(rv)
		return nil
	}

	// Fall back to the slower binary.Read if a fast path was not available
	// above.
	err := binary.Read(r, littleEndian, element)
	if err != nil {
		return truncatedInput("readElement", errors.WithStack(err))
	}
	return nil
}

// readElements reads multiple items from r. It is equivalent to multiple
// calls to readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := readElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	// Attempt to write the element based on the concrete type via fast
	// type assertions first.
	switch e := element.(type) {
	case int32:
		err := binaryserializer.PutUint32(w, littleEndian, uint32(e))
		if err != nil {
			return err
		}
		return nil

	case uint32:
		err := binaryserializer.PutUint32(w, littleEndian, e)
		if err != nil {
			return err
		}
		return nil

	case int64:
		err := binaryserializer.PutUint64(w, littleEndian, uint64(e))
		if err != nil {
			return err
		}
		return nil

	case uint64:
		err := binaryserializer.PutUint64(w, littleEndian, e)
		if err != nil {
			return err
		}
		return nil

	case bool:
		var err error
		if e {
			err = binaryserializer.PutUint8(w, 0x01)
		} else {
			err = binaryserializer.PutUint8(w, 0x00)
		}
		if err != nil {
			return err
		}
		return nil

	// Message header checksum.
	case [4]byte:
		_, err := w.Write(e[:])
		if err != nil {
			return errors.WithStack(err)
		}
		return nil

	// Message header command.
	case [CommandSize]uint8:
		_, err := w.Write(e[:])
		if err != nil {
			return errors.WithStack(err)
		}
		return nil

	// IP address.
	case [16]byte:
		_, err := w.Write(e[:])
		if err != nil {
			return errors.WithStack(err)
		}
		return nil

	case ServiceFlag:
		err := binaryserializer.PutUint64(w, littleEndian, uint64(e))
		if err != nil {
			return err
		}
		return nil

	case CoinflowNet:
		err := binaryserializer.PutUint32(w, littleEndian, uint32(e))
		if err != nil {
			return err
		}
		return nil
	}

	// Fall back to the slower binary.Write if a fast path was not available
	// above.
	return errors.WithStack(binary.Write(w, littleEndian, element))
}

// writeElements writes multiple items to w. It is equivalent to multiple
// calls to writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := writeElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64.
func ReadVarInt(r io.Reader, pver uint32) (uint64, error) {
	discriminant, err := binaryserializer.Uint8(r)
	if err != nil {
		return 0, truncatedInput("ReadVarInt", err)
	}

	var rv uint64
	switch discriminant {
	case 0xff:
		sv, err := binaryserializer.Uint64(r, littleEndian)
		if err != nil {
			return 0, truncatedInput("ReadVarInt", err)
		}
		rv = sv

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		min := uint64(0x100000000)
		if rv < min {
			return 0, messageError("ReadVarInt", ErrNonCanonicalVarInt,
				fmt.Sprintf("value %d could be encoded with a "+
					"discriminant below %x", rv, min))
		}

	case 0xfe:
		sv, err := binaryserializer.Uint32(r, littleEndian)
		if err != nil {
			return 0, truncatedInput("ReadVarInt", err)
		}
		rv = uint64(sv)

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		min := uint64(0x10000)
		if rv < min {
			return 0, messageError("ReadVarInt", ErrNonCanonicalVarInt,
				fmt.Sprintf("value %d could be encoded with a "+
					"discriminant below %x", rv, min))
		}

	case 0xfd:
		sv, err := binaryserializer.Uint16(r, littleEndian)
		if err != nil {
			return 0, truncatedInput("ReadVarInt", err)
		}
		rv = uint64(sv)

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		min := uint64(0xfd)
		if rv < min {
			return 0, messageError("ReadVarInt", ErrNonCanonicalVarInt,
				fmt.Sprintf("value %d could be encoded with a "+
					"discriminant below %x", rv, min))
		}

	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// WriteVarInt serializes val to w using a variable number of bytes depending
// on its value.
func WriteVarInt(w io.Writer, pver uint32, val uint64) error {
	if val < 0xfd {
		return binaryserializer.PutUint8(w, uint8(val))
	}

	if val <= math.MaxUint16 {
		err := binaryserializer.PutUint8(w, 0xfd)
		if err != nil {
			return err
		}
		return binaryserializer.PutUint16(w, littleEndian, uint16(val))
	}

	if val <= math.MaxUint32 {
		err := binaryserializer.PutUint8(w, 0xfe)
		if err != nil {
			return err
		}
		return binaryserializer.PutUint32(w, littleEndian, uint32(val))
	}

	err := binaryserializer.PutUint8(w, 0xff)
	if err != nil {
		return err
	}
	return binaryserializer.PutUint64(w, littleEndian, val)
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	// The value is small enough to be represented by itself, so it's
	// just 1 byte.
	if val < 0xfd {
		return 1
	}

	// Discriminant 1 byte plus 2 bytes for the uint16.
	if val <= math.MaxUint16 {
		return 3
	}

	// Discriminant 1 byte plus 4 bytes for the uint32.
	if val <= math.MaxUint32 {
		return 5
	}

	// Discriminant 1 byte plus 8 bytes for the uint64.
	return 9
}

// ReadVarString reads a variable length string from r and returns it as a Go
// string. A variable length string is encoded as a variable length integer
// containing the length of the string followed by the bytes that represent
// the string itself. An error is returned if the length is greater than the
// maximum message payload size since it helps protect against memory
// exhaustion attacks and forged malicious messages.
func ReadVarString(r io.Reader, pver uint32) (string, error) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return "", err
	}

	// Prevent variable length strings that are larger than the maximum
	// message size. It would be possible to cause memory exhaustion and
	// panics without a sane upper bound on this count.
	if count > MaxMessagePayload {
		return "", messageError("ReadVarString", ErrPayloadTooLarge,
			fmt.Sprintf("variable length string is too long "+
				"[count %d, max %d]", count, MaxMessagePayload))
	}

	buf := make([]byte, count)
	_, err = io.ReadFull(r, buf)
	if err != nil {
		return "", truncatedInput("ReadVarString", errors.WithStack(err))
	}
	return string(buf), nil
}

// WriteVarString serializes str to w as a variable length integer containing
// the length of the string followed by the bytes that represent the string
// itself.
func WriteVarString(w io.Writer, pver uint32, str string) error {
	err := WriteVarInt(w, pver, uint64(len(str)))
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(str))
	return errors.WithStack(err)
}
