// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the coinflow wire protocol.

For the complete details of the coinflow protocol, see the official wiki entry
at https://en.bitcoin.it/wiki/Protocol_specification which the coinflow wire
format mirrors.

At a high level, this package provides support for marshalling and
unmarshalling supported coinflow messages to and from the wire. This package
does not deal with the specifics of message handling such as what to do when
a message is received. This provides the caller with a high level of
flexibility.

Messages

The coinflow protocol consists of exchanging messages between peers. Each
message is preceded by a header which identifies information about it such as
which coinflow network it is a part of, its type, how big it is, and a
checksum to verify validity. All encoding and decoding of message headers is
handled by this package.

To accomplish this, there is a generic interface for coinflow messages named
Message which allows messages of any type to be read, written, or passed
around through channels, functions, etc. In addition, concrete
implementations of most supported coinflow messages are provided. All of the
details of marshalling and unmarshalling to and from the wire using coinflow
encoding are handled so the caller doesn't have to concern themselves with
the specifics.

Message Interaction

The following provides a quick summary of how the messages are intended to
interact with one another. This package provides the fundamental primitives
for these interactions, but the details of the exchange sequencing belong to
a higher layer.

	The initial handshake consists of two peers sending each other a version
	message (MsgVersion) followed by responding with a verack message
	(MsgVerAck). The peer discovery exchange consists of an addr message
	(MsgAddr) carrying up to 2500 known addresses, most recent first.

Common Parameters

There are several common parameters that arise when using this package to
read and write coinflow messages. The following sections provide a quick
overview of these parameters so the next sections can build on them.

Protocol Version

The protocol version should be negotiated with the remote peer at a higher
level than this package via the version (MsgVersion) message exchange,
however, this package provides the wire.ProtocolVersion constant which
indicates the latest protocol version this package supports and is typically
the value to use for all outbound connections before a potentially lower
protocol version is negotiated.

Coinflow Network

The coinflow network is a magic number which is used to identify the start of
a message and which coinflow network the message applies to. This package
provides the following constants:

	wire.MainNet
	wire.TestNet
	wire.SimNet

Determining Message Type

As discussed in the coinflow message overview section, this package reads and
writes coinflow messages using a generic interface named Message. In order to
determine the actual concrete type of the message, use a type switch or type
assertion.

Reading Messages

In order to unmarshal coinflow messages from the wire, use the ReadMessage
function. It accepts any io.Reader, but typically this will be a net.Conn to
a remote node running a coinflow peer. ReadMessage returns the parsed message
along with its header so the caller can inspect the magic, declared length,
and checksum; ReadMessageVerified additionally recomputes the payload
checksum and rejects frames whose header value disagrees.

Writing Messages

In order to marshal coinflow messages to the wire, use the WriteMessage
function. It accepts any io.Writer, but typically this will be a net.Conn to
a remote node running a coinflow peer. WriteMessage computes the payload
checksum itself; WriteMessageWithChecksumN lets the caller inject a
precomputed (or intentionally invalid) checksum for replay and testing.

Errors

Errors returned by this package are either the raw errors provided by
underlying calls to read/write from streams, or of type wire.MessageError.
This allows the caller to differentiate between general io errors and
malformed messages through type assertions, and to react to the specific
kind of malformation through the ErrorCode carried by the MessageError.
*/
package wire
