// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"unicode"

	"github.com/coinflow/coinflowd/util/hashes"
	"github.com/pkg/errors"
)

// MessageHeaderSize is the number of bytes in a coinflow message header.
// Coinflow network (magic) 4 bytes + command 12 bytes + payload length 4
// bytes + checksum 4 bytes.
const MessageHeaderSize = 24

// CommandSize is the fixed size of all commands in the common coinflow
// message header. Shorter commands must be zero padded.
const CommandSize = 12

// MaxMessagePayload is the maximum bytes a message can be regardless of other
// individual limits imposed by messages themselves.
const MaxMessagePayload = (1024 * 1024 * 32) // 32MB

// Commands used in coinflow message headers which describe the type of
// message.
const (
	CmdVersion = "version"
	CmdVerAck  = "verack"
	CmdAddr    = "addr"
)

// Message is an interface that describes a coinflow message. A type that
// implements Message has complete control over the representation of its
// data and may therefore contain additional or fewer fields than those which
// are used directly in the protocol encoded message.
type Message interface {
	CoinflowDecode(io.Reader, uint32) error
	CoinflowEncode(io.Writer, uint32) error
	Command() string
	MaxPayloadLength(uint32) uint32
}

// makeEmptyMessage creates a message of the appropriate concrete type based
// on the command.
func makeEmptyMessage(command string) (Message, error) {
	var msg Message
	switch command {
	case CmdVersion:
		msg = &MsgVersion{}

	case CmdVerAck:
		msg = &MsgVerAck{}

	case CmdAddr:
		msg = &MsgAddr{}

	default:
		return nil, messageError("makeEmptyMessage", ErrUnknownCommand,
			fmt.Sprintf("unhandled command [%s]", command))
	}
	return msg, nil
}

// MessageHeader defines the header structure for all coinflow protocol
// messages.
type MessageHeader struct {
	Magic    CoinflowNet // 4 bytes
	Command  string      // 12 bytes
	Length   uint32      // 4 bytes
	Checksum [4]byte     // 4 bytes
}

// readMessageHeader reads a coinflow message header from r.
func readMessageHeader(r io.Reader) (int, *MessageHeader, error) {
	// Since readElements doesn't return the amount of bytes read, attempt
	// to read the entire header into a buffer first in case there is a
	// short read so the proper amount of read bytes are known. This works
	// since the header is a fixed size.
	var headerBytes [MessageHeaderSize]byte
	n, err := io.ReadFull(r, headerBytes[:])
	if err != nil {
		return n, nil, truncatedInput("readMessageHeader",
			errors.WithStack(err))
	}
	hr := bytes.NewReader(headerBytes[:])

	// Create and populate a MessageHeader struct from the raw header
	// bytes.
	hdr := MessageHeader{}
	var command [CommandSize]byte
	err = readElements(hr, &hdr.Magic, &command, &hdr.Length, &hdr.Checksum)
	if err != nil {
		return n, nil, err
	}

	hdr.Command, err = parseCommand(command)
	if err != nil {
		return n, nil, err
	}

	return n, &hdr, nil
}

// parseCommand converts the fixed-size command field into its logical name.
// The name is the ASCII text before the first zero byte; everything after it
// must be zero padding.
func parseCommand(command [CommandSize]byte) (string, error) {
	name := command[:]
	padding := []byte{}
	for i, b := range command {
		if b == 0x00 {
			name = command[:i]
			padding = command[i:]
			break
		}
	}
	for _, b := range name {
		if b > unicode.MaxASCII {
			return "", messageError("parseCommand", ErrInvalidCommand,
				fmt.Sprintf("command %q contains non-ASCII bytes",
					command))
		}
	}
	for _, b := range padding {
		if b != 0x00 {
			return "", messageError("parseCommand", ErrInvalidCommand,
				fmt.Sprintf("command %q is not zero padded", command))
		}
	}
	return string(name), nil
}

// WriteMessageN writes a coinflow Message to w including the necessary
// header information and returns the number of bytes written. The payload
// checksum is computed as the first four bytes of the double sha256 of the
// payload bytes.
func WriteMessageN(w io.Writer, msg Message, pver uint32, cfnet CoinflowNet) (int, error) {
	return writeMessageN(w, msg, pver, cfnet, nil)
}

// WriteMessage writes a coinflow Message to w including the necessary header
// information. This function is the same as WriteMessageN except it doesn't
// return the number of bytes written. This function is mainly provided for
// backwards compatibility with the original API, but it's also useful for
// callers that don't care about byte counts.
func WriteMessage(w io.Writer, msg Message, pver uint32, cfnet CoinflowNet) error {
	_, err := WriteMessageN(w, msg, pver, cfnet)
	return err
}

// WriteMessageWithChecksumN writes a coinflow Message to w like
// WriteMessageN, except the provided checksum is written verbatim instead of
// being computed from the payload. This supports test and replay scenarios
// where a caller injects a precomputed or intentionally invalid checksum.
func WriteMessageWithChecksumN(w io.Writer, msg Message, pver uint32,
	cfnet CoinflowNet, checksum [4]byte) (int, error) {

	return writeMessageN(w, msg, pver, cfnet, &checksum)
}

// writeMessageN is the real workhorse behind the exported message writers.
// A nil checksum means compute it from the payload bytes.
func writeMessageN(w io.Writer, msg Message, pver uint32, cfnet CoinflowNet,
	checksum *[4]byte) (int, error) {

	totalBytes := 0

	// Enforce max command size.
	var command [CommandSize]byte
	cmd := msg.Command()
	if len(cmd) > CommandSize {
		return totalBytes, messageError("WriteMessage", ErrCommandTooLong,
			fmt.Sprintf("command [%s] is too long [max %d]", cmd,
				CommandSize))
	}
	copy(command[:], []byte(cmd))

	// Encode the message payload.
	var bw bytes.Buffer
	err := msg.CoinflowEncode(&bw, pver)
	if err != nil {
		return totalBytes, err
	}
	payload := bw.Bytes()
	lenp := len(payload)

	// Enforce maximum overall message payload.
	if lenp > MaxMessagePayload {
		return totalBytes, messageError("WriteMessage", ErrPayloadTooLarge,
			fmt.Sprintf("message payload is too large - encoded "+
				"%d bytes, but maximum message payload is %d bytes",
				lenp, MaxMessagePayload))
	}

	// Enforce maximum message payload based on the message type.
	mpl := msg.MaxPayloadLength(pver)
	if uint32(lenp) > mpl {
		return totalBytes, messageError("WriteMessage", ErrPayloadTooLarge,
			fmt.Sprintf("message payload is too large - encoded "+
				"%d bytes, but maximum message payload size for "+
				"messages of type [%s] is %d", lenp, cmd, mpl))
	}

	// Create header for the message. An explicitly provided checksum is
	// used verbatim; otherwise it is derived from the payload bytes.
	hdr := MessageHeader{
		Magic:   cfnet,
		Command: cmd,
		Length:  uint32(lenp),
	}
	if checksum != nil {
		hdr.Checksum = *checksum
	} else {
		copy(hdr.Checksum[:], hashes.DoubleHashB(payload)[0:4])
	}

	// Encode the header for the message. This is done to a buffer rather
	// than directly to the writer since writeElements doesn't return the
	// number of bytes written.
	hw := bytes.NewBuffer(make([]byte, 0, MessageHeaderSize))
	err = writeElements(hw, hdr.Magic, command, hdr.Length, hdr.Checksum)
	if err != nil {
		return totalBytes, err
	}

	// Write header.
	n, err := w.Write(hw.Bytes())
	totalBytes += n
	if err != nil {
		return totalBytes, errors.WithStack(err)
	}

	// Only write the payload if there is one, e.g., verack messages don't
	// have one.
	if len(payload) > 0 {
		n, err = w.Write(payload)
		totalBytes += n
		if err != nil {
			return totalBytes, errors.WithStack(err)
		}
	}

	return totalBytes, nil
}

// readMessageN is the real workhorse behind the exported message readers.
// Checksum verification is opt-in via verifyChecksum so callers that inject
// explicit checksums on the write side can still read their own frames back.
func readMessageN(r io.Reader, pver uint32, verifyChecksum bool) (int, Message, *MessageHeader, error) {
	totalBytes := 0
	n, hdr, err := readMessageHeader(r)
	totalBytes += n
	if err != nil {
		return totalBytes, nil, nil, err
	}

	// Enforce maximum message payload.
	if hdr.Length > MaxMessagePayload {
		return totalBytes, nil, nil, messageError("ReadMessage",
			ErrPayloadTooLarge, fmt.Sprintf("message payload is "+
				"too large - header indicates %d bytes, but max "+
				"message payload is %d bytes", hdr.Length,
				MaxMessagePayload))
	}

	// Create struct of appropriate message type based on the command.
	msg, err := makeEmptyMessage(hdr.Command)
	if err != nil {
		return totalBytes, nil, hdr, err
	}

	// Check for maximum length based on the message type as a malicious
	// client could otherwise create a well-formed header and set the
	// length to max numbers in order to exhaust the machine's memory.
	mpl := msg.MaxPayloadLength(pver)
	if hdr.Length > mpl {
		return totalBytes, nil, hdr, messageError("ReadMessage",
			ErrPayloadTooLarge, fmt.Sprintf("payload exceeds max "+
				"length - header indicates %d bytes, but max "+
				"payload size for messages of type [%s] is %d",
				hdr.Length, hdr.Command, mpl))
	}

	// Read payload.
	payload := make([]byte, hdr.Length)
	n, err = io.ReadFull(r, payload)
	totalBytes += n
	if err != nil {
		return totalBytes, nil, hdr, truncatedInput("ReadMessage",
			errors.WithStack(err))
	}

	// Verify the checksum if the caller asked for it.
	if verifyChecksum {
		var checksum [4]byte
		copy(checksum[:], hashes.DoubleHashB(payload)[0:4])
		if checksum != hdr.Checksum {
			return totalBytes, nil, hdr, messageError("ReadMessage",
				ErrChecksumMismatch, fmt.Sprintf("payload checksum "+
					"failed - header indicates %x, but actual "+
					"checksum is %x", hdr.Checksum, checksum))
		}
	}

	// Unmarshal message. NOTE: This must be a *bytes.Reader so the number
	// of unconsumed bytes is known after decoding.
	pr := bytes.NewReader(payload)
	err = msg.CoinflowDecode(pr, pver)
	if err != nil {
		return totalBytes, nil, hdr, err
	}

	// The declared payload length must match the number of bytes the
	// message type actually consumed.
	if pr.Len() != 0 {
		return totalBytes, nil, hdr, messageError("ReadMessage",
			ErrLengthMismatch, fmt.Sprintf("payload length disagrees "+
				"with decoded message - header indicates %d bytes, "+
				"but [%s] consumed %d", hdr.Length, hdr.Command,
				int(hdr.Length)-pr.Len()))
	}

	return totalBytes, msg, hdr, nil
}

// ReadMessageN reads, validates, and parses the next coinflow Message from r
// and returns the number of bytes read in addition to the parsed Message and
// its header. The header checksum is returned to the caller but NOT
// verified; use ReadMessageVerified when integrity checking is wanted.
func ReadMessageN(r io.Reader, pver uint32) (int, Message, *MessageHeader, error) {
	return readMessageN(r, pver, false)
}

// ReadMessage reads, validates, and parses the next coinflow Message from r.
// This function only differs from ReadMessageN in that it doesn't return the
// number of bytes read. This function is mainly provided for backwards
// compatibility with the original API, but it's also useful for callers that
// don't care about byte counts.
func ReadMessage(r io.Reader, pver uint32) (Message, *MessageHeader, error) {
	_, msg, hdr, err := readMessageN(r, pver, false)
	return msg, hdr, err
}

// ReadMessageVerified reads, validates, and parses the next coinflow Message
// from r like ReadMessage, and additionally recomputes the payload checksum
// and fails with an ErrChecksumMismatch MessageError when it disagrees with
// the header value.
func ReadMessageVerified(r io.Reader, pver uint32) (Message, *MessageHeader, error) {
	_, msg, hdr, err := readMessageN(r, pver, true)
	return msg, hdr, err
}
