// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
	"sort"
)

// MaxAddrPerMsg is the maximum number of addresses that can be in a coinflow
// addr message. Encoding truncates longer lists to the most recent entries
// which limits how far a single message can amplify address gossip.
const MaxAddrPerMsg = 2500

// MsgAddr implements the Message interface and represents a coinflow addr
// message. It is used to provide a list of known active peers on the
// network. Each message is limited to a maximum number of addresses, which
// is currently 2500. As a result, multiple messages must be used to relay
// the full list.
//
// Use the AddAddress function to build up the list of known addresses when
// sending an addr message to another peer.
type MsgAddr struct {
	AddrList []*NetAddress
}

// AddAddress adds a known active peer to the message.
func (msg *MsgAddr) AddAddress(na *NetAddress) {
	msg.AddrList = append(msg.AddrList, na)
}

// AddAddresses adds multiple known active peers to the message.
func (msg *MsgAddr) AddAddresses(netAddrs ...*NetAddress) {
	msg.AddrList = append(msg.AddrList, netAddrs...)
}

// ClearAddresses removes all addresses from the message.
func (msg *MsgAddr) ClearAddresses() {
	msg.AddrList = []*NetAddress{}
}

// canonicalAddrList returns the addresses that actually go on the wire: a
// private copy of the list, stable sorted by timestamp descending (most
// recent first, ties keep their original order) and truncated to
// MaxAddrPerMsg entries. The caller's list is never reordered or shortened.
func (msg *MsgAddr) canonicalAddrList() []*NetAddress {
	addrs := make([]*NetAddress, len(msg.AddrList))
	copy(addrs, msg.AddrList)
	sort.SliceStable(addrs, func(i, j int) bool {
		return addrs[i].Timestamp.After(addrs[j].Timestamp)
	})
	if len(addrs) > MaxAddrPerMsg {
		addrs = addrs[:MaxAddrPerMsg]
	}
	return addrs
}

// CoinflowDecode decodes r using the coinflow protocol encoding into the
// receiver. The wire order is preserved since the encoder already
// canonicalized it. This is part of the Message interface implementation.
func (msg *MsgAddr) CoinflowDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}

	// Limit to max addresses per message.
	if count > MaxAddrPerMsg {
		return messageError("MsgAddr.CoinflowDecode", ErrTooManyAddresses,
			fmt.Sprintf("too many addresses for message "+
				"[count %d, max %d]", count, MaxAddrPerMsg))
	}

	addrList := make([]NetAddress, count)
	msg.AddrList = make([]*NetAddress, 0, count)
	for i := uint64(0); i < count; i++ {
		na := &addrList[i]
		err := readNetAddress(r, pver, na, true)
		if err != nil {
			return err
		}
		msg.AddAddress(na)
	}
	return nil
}

// CoinflowEncode encodes the receiver to w using the coinflow protocol
// encoding. The address list is sorted by timestamp descending and truncated
// to MaxAddrPerMsg entries before serialization, so encoding the same list
// repeatedly is idempotent and byte-identical. This is part of the Message
// interface implementation.
func (msg *MsgAddr) CoinflowEncode(w io.Writer, pver uint32) error {
	addrs := msg.canonicalAddrList()

	err := WriteVarInt(w, pver, uint64(len(addrs)))
	if err != nil {
		return err
	}

	for _, na := range addrs {
		err = writeNetAddress(w, pver, na, true)
		if err != nil {
			return err
		}
	}

	return nil
}

// Command returns the protocol command string for the message. This is part
// of the Message interface implementation.
func (msg *MsgAddr) Command() string {
	return CmdAddr
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver. This is part of the Message interface implementation.
func (msg *MsgAddr) MaxPayloadLength(pver uint32) uint32 {
	// Num addresses (varInt) + max allowed addresses.
	return MaxVarIntPayload + (MaxAddrPerMsg * maxNetAddressPayload(pver))
}

// NewMsgAddr returns a new coinflow addr message that conforms to the
// Message interface. See MsgAddr for details.
func NewMsgAddr() *MsgAddr {
	return &MsgAddr{AddrList: make([]*NetAddress, 0, MaxAddrPerMsg)}
}
