// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// MaxUserAgentLen is the maximum allowed length for the user agent field in
// a version message (MsgVersion).
const MaxUserAgentLen = 256

// DefaultUserAgent for wire in the stack.
const DefaultUserAgent = "coinflow analyzer 0.0.1"

// MsgVersion implements the Message interface and represents a coinflow
// version message. It is used for a peer to advertise itself as soon as an
// outbound connection is made. The remote peer then uses this information
// along with its own to negotiate. The remote peer must then respond with a
// version message of its own containing the negotiated values followed by a
// verack message (MsgVerAck). This exchange must take place before any
// further communication is allowed to proceed.
type MsgVersion struct {
	// Version of the protocol the node is using.
	ProtocolVersion int32

	// Bitfield which identifies the enabled services.
	Services ServiceFlag

	// Time the message was generated. This is encoded as an int64 on the
	// wire.
	Timestamp time.Time

	// Address of the remote peer. No timestamp is encoded in the version
	// message context.
	AddrRecv NetAddress

	// Address of the local peer. No timestamp is encoded in the version
	// message context.
	AddrFrom NetAddress

	// Unique value associated with the message that is used to detect
	// self connections.
	Nonce uint64

	// The user agent that generated the message. This is encoded as a
	// varString on the wire. This has a max length of MaxUserAgentLen.
	UserAgent string

	// Last block seen by the generator of the version message.
	StartHeight int32

	// Announce transactions to the peer. This is encoded as a single byte
	// boolean on the wire.
	Relay bool
}

// HasService returns whether the specified service is supported by the peer
// that generated the message.
func (msg *MsgVersion) HasService(service ServiceFlag) bool {
	return msg.Services&service == service
}

// AddService adds service as a supported service by the peer generating the
// message.
func (msg *MsgVersion) AddService(service ServiceFlag) {
	msg.Services |= service
}

// CoinflowDecode decodes r using the coinflow protocol encoding into the
// receiver. This is part of the Message interface implementation.
func (msg *MsgVersion) CoinflowDecode(r io.Reader, pver uint32) error {
	err := readElements(r, &msg.ProtocolVersion, &msg.Services,
		(*int64Time)(&msg.Timestamp))
	if err != nil {
		return err
	}

	err = readNetAddress(r, pver, &msg.AddrRecv, false)
	if err != nil {
		return err
	}

	err = readNetAddress(r, pver, &msg.AddrFrom, false)
	if err != nil {
		return err
	}

	err = readElement(r, &msg.Nonce)
	if err != nil {
		return err
	}

	userAgent, err := ReadVarString(r, pver)
	if err != nil {
		return err
	}
	err = validateUserAgent(userAgent)
	if err != nil {
		return err
	}
	msg.UserAgent = userAgent

	err = readElement(r, &msg.StartHeight)
	if err != nil {
		return err
	}

	return readElement(r, &msg.Relay)
}

// CoinflowEncode encodes the receiver to w using the coinflow protocol
// encoding. This is part of the Message interface implementation.
func (msg *MsgVersion) CoinflowEncode(w io.Writer, pver uint32) error {
	err := validateUserAgent(msg.UserAgent)
	if err != nil {
		return err
	}

	err = writeElements(w, msg.ProtocolVersion, msg.Services,
		msg.Timestamp.Unix())
	if err != nil {
		return err
	}

	err = writeNetAddress(w, pver, &msg.AddrRecv, false)
	if err != nil {
		return err
	}

	err = writeNetAddress(w, pver, &msg.AddrFrom, false)
	if err != nil {
		return err
	}

	err = writeElement(w, msg.Nonce)
	if err != nil {
		return err
	}

	err = WriteVarString(w, pver, msg.UserAgent)
	if err != nil {
		return err
	}

	err = writeElement(w, msg.StartHeight)
	if err != nil {
		return err
	}

	return writeElement(w, msg.Relay)
}

// Command returns the protocol command string for the message. This is part
// of the Message interface implementation.
func (msg *MsgVersion) Command() string {
	return CmdVersion
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver. This is part of the Message interface implementation.
func (msg *MsgVersion) MaxPayloadLength(pver uint32) uint32 {
	// Protocol version 4 bytes + services 8 bytes + timestamp 8 bytes +
	// remote and local net addresses without timestamps + nonce 8 bytes +
	// length of user agent (varInt) + max allowed user agent length +
	// start height 4 bytes + relay transactions flag 1 byte.
	return 33 + (2 * (maxNetAddressPayload(pver) - 4)) + MaxVarIntPayload +
		MaxUserAgentLen
}

// NewMsgVersion returns a new coinflow version message that conforms to the
// Message interface using the passed parameters and defaults for the
// remaining fields.
func NewMsgVersion(addrRecv *NetAddress, addrFrom *NetAddress, nonce uint64,
	startHeight int32) *MsgVersion {

	// Limit the timestamp to one second precision since the protocol
	// doesn't support better.
	return &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion),
		Services:        0,
		Timestamp:       time.Unix(time.Now().Unix(), 0),
		AddrRecv:        *addrRecv,
		AddrFrom:        *addrFrom,
		Nonce:           nonce,
		UserAgent:       DefaultUserAgent,
		StartHeight:     startHeight,
		Relay:           true,
	}
}

// validateUserAgent checks userAgent length against MaxUserAgentLen.
func validateUserAgent(userAgent string) error {
	if len(userAgent) > MaxUserAgentLen {
		return messageError("MsgVersion", ErrUserAgentTooLong,
			fmt.Sprintf("user agent too long [len %d, max %d]",
				len(userAgent), MaxUserAgentLen))
	}
	return nil
}

// AddUserAgent adds a user agent to the user agent string for the version
// message. The version string is not defined to any strict format, although
// it is recommended to use the form "major.minor.revision" e.g. "2.6.41".
func (msg *MsgVersion) AddUserAgent(name string, version string,
	comments ...string) error {

	newUserAgent := fmt.Sprintf("%s:%s", name, version)
	if len(comments) != 0 {
		newUserAgent = fmt.Sprintf("%s(%s)", newUserAgent,
			strings.Join(comments, "; "))
	}
	newUserAgent = fmt.Sprintf("%s%s/", msg.UserAgent, newUserAgent)
	err := validateUserAgent(newUserAgent)
	if err != nil {
		return err
	}
	msg.UserAgent = newUserAgent
	return nil
}
