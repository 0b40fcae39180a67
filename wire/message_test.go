// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

// makeHeader is a convenience function to make a message header in the form
// of a byte slice. It is used to force errors when reading messages.
func makeHeader(cfnet CoinflowNet, command string,
	payloadLen uint32, checksum uint32) []byte {

	// The length of a coinflow message header is 24 bytes.
	// 4 byte magic number of the coinflow network + 12 byte command + 4
	// byte payload length + 4 byte checksum.
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint32(buf, uint32(cfnet))
	copy(buf[4:], []byte(command))
	binary.LittleEndian.PutUint32(buf[16:], payloadLen)
	binary.LittleEndian.PutUint32(buf[20:], checksum)
	return buf
}

// fakeMessage implements the Message interface and is used to force encode
// errors in messages.
type fakeMessage struct {
	command        string
	payload        []byte
	forceEncodeErr bool
	forceLenErr    bool
}

// errFakeEncode is the error returned by fakeMessage when its encode is
// forced to fail.
var errFakeEncode = errors.New("forced encode error")

// CoinflowDecode doesn't do anything. It just satisfies the wire.Message
// interface.
func (msg *fakeMessage) CoinflowDecode(r io.Reader, pver uint32) error {
	return nil
}

// CoinflowEncode writes the payload field of the fake message or forces an
// error if the forceEncodeErr flag of the fake message is set. It also
// satisfies the wire.Message interface.
func (msg *fakeMessage) CoinflowEncode(w io.Writer, pver uint32) error {
	if msg.forceEncodeErr {
		return errFakeEncode
	}
	_, err := w.Write(msg.payload)
	return errors.WithStack(err)
}

// Command returns the command field of the fake message and satisfies the
// Message interface.
func (msg *fakeMessage) Command() string {
	return msg.command
}

// MaxPayloadLength returns the length of the payload field of the fake
// message or a smaller value if the forceLenErr flag of the fake message is
// set. It satisfies the Message interface.
func (msg *fakeMessage) MaxPayloadLength(pver uint32) uint32 {
	lenp := uint32(len(msg.payload))
	if msg.forceLenErr {
		return lenp - 1
	}
	return lenp
}

// TestMessage tests the Read/WriteMessage and Read/WriteMessageN API.
func TestMessage(t *testing.T) {
	pver := ProtocolVersion

	// Create the various types of messages to test.

	// MsgVersion. The net addresses in a version message carry a zero
	// value timestamp since the encoding omits it.
	addrYou := &net.TCPAddr{IP: net.ParseIP("192.168.0.1"), Port: 8333}
	you := NewNetAddress(addrYou, SFNodeNetwork)
	you.Timestamp = time.Time{}
	addrMe := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 8333}
	me := NewNetAddress(addrMe, SFNodeNetwork)
	me.Timestamp = time.Time{}
	msgVersion := NewMsgVersion(you, me, 123123, 0)
	msgVersion.Timestamp = time.Unix(0x495fab29, 0)

	msgVerAck := NewMsgVerAck()

	msgAddr := NewMsgAddr()
	msgAddr.AddAddress(NewNetAddressTimestamp(time.Unix(0x495fab29, 0),
		SFNodeNetwork, net.ParseIP("127.0.0.1"), 8333))

	tests := []struct {
		in    Message     // Value to encode
		out   Message     // Expected decoded value
		pver  uint32      // Protocol version for wire encoding
		cfnet CoinflowNet // Network to use for wire encoding
		bytes int         // Expected num bytes read/written
	}{
		{msgVersion, msgVersion, pver, MainNet, 133},
		{msgVerAck, msgVerAck, pver, MainNet, 24},
		{msgAddr, msgAddr, pver, MainNet, 55},

		// An arbitrary magic value goes on the wire verbatim and comes
		// back in the parsed header.
		{msgVerAck, msgVerAck, pver, CoinflowNet(0xdeadbeaf), 24},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		// Encode to wire format.
		var buf bytes.Buffer
		nw, err := WriteMessageN(&buf, test.in, test.pver, test.cfnet)
		if err != nil {
			t.Errorf("WriteMessage #%d error %v", i, err)
			continue
		}
		if nw != test.bytes {
			t.Errorf("WriteMessage #%d unexpected num bytes "+
				"written - got %d, want %d", i, nw, test.bytes)
		}

		// Decode from wire format.
		rbuf := bytes.NewReader(buf.Bytes())
		nr, msg, hdr, err := ReadMessageN(rbuf, test.pver)
		if err != nil {
			t.Errorf("ReadMessage #%d error %v, msg %v", i, err,
				spew.Sdump(msg))
			continue
		}
		if !reflect.DeepEqual(msg, test.out) {
			t.Errorf("ReadMessage #%d\n got: %v want: %v", i,
				spew.Sdump(msg), spew.Sdump(test.out))
			continue
		}
		if nr != test.bytes {
			t.Errorf("ReadMessage #%d unexpected num bytes read - "+
				"got %d, want %d", i, nr, test.bytes)
		}

		// The parsed header reflects the envelope that was written.
		if hdr.Magic != test.cfnet {
			t.Errorf("ReadMessage #%d wrong magic - got 0x%x, "+
				"want 0x%x", i, uint32(hdr.Magic),
				uint32(test.cfnet))
		}
		if hdr.Command != test.in.Command() {
			t.Errorf("ReadMessage #%d wrong command - got %v, "+
				"want %v", i, hdr.Command, test.in.Command())
		}
		if int(hdr.Length) != test.bytes-MessageHeaderSize {
			t.Errorf("ReadMessage #%d wrong payload length - "+
				"got %d, want %d", i, hdr.Length,
				test.bytes-MessageHeaderSize)
		}
	}
}

// TestEmptyPayloadChecksum ensures the checksum written for a message with no
// payload is the first four bytes of the double sha256 of no data.
func TestEmptyPayloadChecksum(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMessage(&buf, NewMsgVerAck(), ProtocolVersion, MainNet)
	if err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	_, hdr, err := ReadMessage(bytes.NewReader(buf.Bytes()), ProtocolVersion)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	wantChecksum := [4]byte{0x5d, 0xf6, 0xe0, 0xe2}
	if hdr.Checksum != wantChecksum {
		t.Errorf("wrong checksum - got %x, want %x", hdr.Checksum,
			wantChecksum)
	}
	if hdr.Length != 0 {
		t.Errorf("wrong payload length - got %d, want 0", hdr.Length)
	}
}

// TestMessageChecksumVerification exercises the opt-in checksum verification
// together with explicitly injected checksums on the write side.
func TestMessageChecksumVerification(t *testing.T) {
	pver := ProtocolVersion
	msg := NewMsgAddr()
	msg.AddAddress(NewNetAddressTimestamp(time.Unix(0x495fab29, 0),
		SFNodeNetwork, net.ParseIP("127.0.0.1"), 8333))

	// A frame with a computed checksum passes verification.
	var buf bytes.Buffer
	if err := WriteMessage(&buf, msg, pver, MainNet); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if _, _, err := ReadMessageVerified(bytes.NewReader(buf.Bytes()), pver); err != nil {
		t.Fatalf("ReadMessageVerified: %v", err)
	}

	// A frame with an injected bogus checksum is accepted by the plain
	// reader, surfaces the injected value in the header, and is rejected
	// by the verifying reader.
	bogus := [4]byte{0xde, 0xad, 0xbe, 0xef}
	buf.Reset()
	if _, err := WriteMessageWithChecksumN(&buf, msg, pver, MainNet, bogus); err != nil {
		t.Fatalf("WriteMessageWithChecksumN: %v", err)
	}
	_, hdr, err := ReadMessage(bytes.NewReader(buf.Bytes()), pver)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if hdr.Checksum != bogus {
		t.Errorf("wrong checksum - got %x, want %x", hdr.Checksum, bogus)
	}
	_, _, err = ReadMessageVerified(bytes.NewReader(buf.Bytes()), pver)
	assertMessageErrorCode(t, "ReadMessageVerified", err,
		ErrChecksumMismatch)
}

// TestWriteMessageWireErrors performs negative tests against wire encoding
// messages to confirm error paths work correctly.
func TestWriteMessageWireErrors(t *testing.T) {
	pver := ProtocolVersion
	cfnet := MainNet

	// Fake message with a command that is too long.
	badCommandMsg := &fakeMessage{command: "somethingtoolong"}

	// Fake message with a problem during encoding.
	encodeErrMsg := &fakeMessage{forceEncodeErr: true}

	// Fake message that has payload which exceeds max overall message size.
	exceedOverallPayload := make([]byte, MaxMessagePayload+1)
	exceedOverallPayloadErrMsg := &fakeMessage{
		command: "bogus", payload: exceedOverallPayload,
	}

	// Fake message that has payload which exceeds max allowed per message.
	exceedTypePayloadErrMsg := &fakeMessage{
		command: "bogus", payload: []byte{0x00, 0x00}, forceLenErr: true,
	}

	// Fake message that is used to force errors in the header and payload
	// writes.
	bogusMsg := &fakeMessage{command: "bogus", payload: []byte{0x01, 0x02}}

	tests := []struct {
		msg  Message   // Message to encode
		code ErrorCode // Expected error code, or -1 for a non-message error
		max  int       // Max size of fixed buffer to induce errors
	}{
		// Command too long.
		{badCommandMsg, ErrCommandTooLong, 0},
		// Payload exceeds max overall message size.
		{exceedOverallPayloadErrMsg, ErrPayloadTooLarge, 0},
		// Payload exceeds max allowed per message type.
		{exceedTypePayloadErrMsg, ErrPayloadTooLarge, 0},
		// Force error in header write.
		{bogusMsg, -1, 0},
		// Force error in payload write.
		{bogusMsg, -1, 24},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		w := newFixedWriter(test.max)
		nw, err := WriteMessageN(w, test.msg, pver, cfnet)
		if test.code >= 0 {
			assertMessageErrorCode(t, "WriteMessage", err, test.code)
		} else if !errors.Is(err, io.ErrShortWrite) {
			t.Errorf("WriteMessage #%d wrong error got: %v, "+
				"want: %v", i, err, io.ErrShortWrite)
		}
		if nw != test.max {
			t.Errorf("WriteMessage #%d unexpected num bytes "+
				"written - got %d, want %d", i, nw, test.max)
		}
	}

	// An error produced by the message encoder itself is returned
	// unaltered.
	var buf bytes.Buffer
	_, err := WriteMessageN(&buf, encodeErrMsg, pver, cfnet)
	if !errors.Is(err, errFakeEncode) {
		t.Errorf("WriteMessage wrong error got: %v, want: %v", err,
			errFakeEncode)
	}
}

// TestReadMessageWireErrors performs negative tests against wire decoding
// messages to confirm error paths work correctly.
func TestReadMessageWireErrors(t *testing.T) {
	pver := ProtocolVersion
	cfnet := MainNet

	// Ensure message errors are as expected with no function specified.
	testErr := MessageError{
		ErrorCode:   ErrChecksumMismatch,
		Description: "something bad happened",
	}
	wantErr := "ErrChecksumMismatch: something bad happened"
	if testErr.Error() != wantErr {
		t.Errorf("MessageError: wrong error - got %v, want %v",
			testErr.Error(), wantErr)
	}

	// Ensure message errors are as expected with a function specified.
	testErr.Func = "foo"
	wantErr = "foo: " + wantErr
	if testErr.Error() != wantErr {
		t.Errorf("MessageError: wrong error - got %v, want %v",
			testErr.Error(), wantErr)
	}

	// Wire encoded bytes for a message which exceeds the max overall
	// message length.
	exceedMaxPayloadBytes := makeHeader(cfnet, "getaddr",
		MaxMessagePayload+1, 0)

	// Wire encoded bytes for a command which contains a non-ASCII byte in
	// its name.
	badCommandBytes := makeHeader(cfnet, "bogus", 0, 0)
	badCommandBytes[4] = 0xff

	// Wire encoded bytes for a command whose zero padding carries stray
	// bytes.
	badPaddingBytes := makeHeader(cfnet, "ver\x00sion", 0, 0)

	// Wire encoded bytes for a command which is valid, but not supported.
	unsupportedCommandBytes := makeHeader(cfnet, "bogus", 0, 0)

	// Wire encoded bytes for a message which exceeds the max allowed
	// payload for its type.
	exceedTypePayloadBytes := makeHeader(cfnet, "verack", 1, 0)

	// Wire encoded bytes for a message whose header claims more payload
	// bytes than the stream provides.
	shortPayloadBytes := makeHeader(cfnet, "addr", 5, 0)

	// Wire encoded bytes for a message whose declared length exceeds what
	// its type actually consumes. The addr payload here is an empty list
	// followed by a stray byte.
	lengthMismatchBytes := append(makeHeader(cfnet, "addr", 2, 0),
		0x00, 0x00)

	tests := []struct {
		buf  []byte    // Wire encoding
		max  int       // Max length of fixed buffer to induce errors
		code ErrorCode // Expected error code
	}{
		// Latest protocol version with intentional read errors.

		// Short header.
		{[]byte{}, 0, ErrTruncatedInput},
		// Header cut mid-way.
		{exceedMaxPayloadBytes, 8, ErrTruncatedInput},
		// Exceed max overall message payload length.
		{exceedMaxPayloadBytes, len(exceedMaxPayloadBytes), ErrPayloadTooLarge},
		// Non-ASCII command name.
		{badCommandBytes, len(badCommandBytes), ErrInvalidCommand},
		// Stray bytes in the command padding.
		{badPaddingBytes, len(badPaddingBytes), ErrInvalidCommand},
		// Valid but unsupported command.
		{unsupportedCommandBytes, len(unsupportedCommandBytes), ErrUnknownCommand},
		// Exceed max allowed payload for a message of its type.
		{exceedTypePayloadBytes, len(exceedTypePayloadBytes), ErrPayloadTooLarge},
		// Declared payload longer than the stream.
		{shortPayloadBytes, len(shortPayloadBytes), ErrTruncatedInput},
		// Declared payload longer than the type consumes.
		{lengthMismatchBytes, len(lengthMismatchBytes), ErrLengthMismatch},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		r := newFixedReader(test.max, test.buf)
		_, msg, _, err := ReadMessageN(r, pver)
		if msg != nil {
			t.Errorf("ReadMessage #%d returned msg %v on error", i,
				spew.Sdump(msg))
		}
		assertMessageErrorCode(t, "ReadMessage", err, test.code)
	}
}
