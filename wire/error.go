// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// ErrorCode identifies a kind of message error. Decode failures are never
// coerced or defaulted; callers discriminate the failure kind by asserting
// the error to *MessageError and inspecting its code.
type ErrorCode int

// These constants are used to identify a specific MessageError.
const (
	// ErrTruncatedInput indicates fewer bytes were available than a field
	// requires.
	ErrTruncatedInput ErrorCode = iota

	// ErrMalformedAddress indicates the bytes of a network address could
	// not be interpreted as a valid address record.
	ErrMalformedAddress

	// ErrInvalidCommand indicates a message header command field that is
	// not ASCII or is not properly zero padded.
	ErrInvalidCommand

	// ErrUnknownCommand indicates a well-formed command name that does not
	// match any known message type.
	ErrUnknownCommand

	// ErrLengthMismatch indicates the declared payload length disagrees
	// with the number of bytes the payload actually consumed.
	ErrLengthMismatch

	// ErrChecksumMismatch indicates checksum verification was requested
	// and the recomputed checksum disagrees with the header value.
	ErrChecksumMismatch

	// ErrPayloadTooLarge indicates a payload that exceeds the maximum
	// allowed size, either the global message limit or the limit of the
	// specific message type.
	ErrPayloadTooLarge

	// ErrCommandTooLong indicates a command name that does not fit the
	// fixed-size header command field.
	ErrCommandTooLong

	// ErrUserAgentTooLong indicates a version user agent that is too long
	// for the protocol's length-prefix encoding limit.
	ErrUserAgentTooLong

	// ErrTooManyAddresses indicates an addr message whose declared address
	// count exceeds the per-message maximum.
	ErrTooManyAddresses

	// ErrNonCanonicalVarInt indicates a variable length integer that was
	// not encoded with the smallest possible width.
	ErrNonCanonicalVarInt
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrTruncatedInput:     "ErrTruncatedInput",
	ErrMalformedAddress:   "ErrMalformedAddress",
	ErrInvalidCommand:     "ErrInvalidCommand",
	ErrUnknownCommand:     "ErrUnknownCommand",
	ErrLengthMismatch:     "ErrLengthMismatch",
	ErrChecksumMismatch:   "ErrChecksumMismatch",
	ErrPayloadTooLarge:    "ErrPayloadTooLarge",
	ErrCommandTooLong:     "ErrCommandTooLong",
	ErrUserAgentTooLong:   "ErrUserAgentTooLong",
	ErrTooManyAddresses:   "ErrTooManyAddresses",
	ErrNonCanonicalVarInt: "ErrNonCanonicalVarInt",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// MessageError describes an issue with a message, such as a malformed
// command field, a mismatched checksum, or a payload that exceeds the
// maximum allowed size.
//
// This provides a mechanism for the caller to type assert the error to
// differentiate between general io errors such as io.EOF and errors that
// indicate a malformed message, and to react to the specific kind of
// malformation via the ErrorCode.
type MessageError struct {
	Func        string    // Function name
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e *MessageError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%s: %s: %s", e.Func, e.ErrorCode, e.Description)
	}
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Description)
}

// messageError creates a MessageError given a set of arguments.
func messageError(f string, c ErrorCode, desc string) *MessageError {
	return &MessageError{Func: f, ErrorCode: c, Description: desc}
}
