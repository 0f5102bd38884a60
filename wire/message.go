package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/citrinedb/citrine-go/policy"
)

// HeaderSize is the size of the fixed message header that follows the
// outer frame header of a TypeMessage frame.
const HeaderSize = 22

// Info1 flags (read-side).
const (
	Info1Read           uint8 = 1 << 0
	Info1GetAll         uint8 = 1 << 1
	Info1NoPayload      uint8 = 1 << 5
	Info1ConsistencyAll uint8 = 1 << 6
)

// Info2 flags (write-side).
const (
	Info2Write  uint8 = 1 << 0
	Info2Delete uint8 = 1 << 1
)

// Info3 flags.
const (
	Info3Last         uint8 = 1 << 0
	Info3CommitMaster uint8 = 1 << 1
)

// Header is the fixed part of a message, carrying the operation flags,
// the result code and the field/op counts needed to parse the rest.
type Header struct {
	Info1          uint8
	Info2          uint8
	Info3          uint8
	ResultCode     uint8
	Generation     uint32
	Expiration     uint32
	TransactionTTL uint32
	FieldCount     uint16
	OpCount        uint16
}

// Encode writes the header into b, which must be at least HeaderSize
// bytes long.
func (h *Header) Encode(b []byte) {
	b[0] = HeaderSize
	b[1] = h.Info1
	b[2] = h.Info2
	b[3] = h.Info3
	b[4] = 0
	b[5] = h.ResultCode
	binary.BigEndian.PutUint32(b[6:10], h.Generation)
	binary.BigEndian.PutUint32(b[10:14], h.Expiration)
	binary.BigEndian.PutUint32(b[14:18], h.TransactionTTL)
	binary.BigEndian.PutUint16(b[18:20], h.FieldCount)
	binary.BigEndian.PutUint16(b[20:22], h.OpCount)
}

// Decode parses the header from b. The embedded header size must match
// HeaderSize, otherwise the peer speaks a different dialect and the
// stream cannot be trusted.
func (h *Header) Decode(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: message header truncated", ErrProtocol)
	}

	if b[0] != HeaderSize {
		return fmt.Errorf("%w: unexpected header size %d", ErrProtocol, b[0])
	}

	h.Info1 = b[1]
	h.Info2 = b[2]
	h.Info3 = b[3]
	h.ResultCode = b[5]
	h.Generation = binary.BigEndian.Uint32(b[6:10])
	h.Expiration = binary.BigEndian.Uint32(b[10:14])
	h.TransactionTTL = binary.BigEndian.Uint32(b[14:18])
	h.FieldCount = binary.BigEndian.Uint16(b[18:20])
	h.OpCount = binary.BigEndian.Uint16(b[20:22])

	return nil
}

// ConsistencyFlags maps a consistency level to its Info1 bits. The
// enumeration is closed: an out-of-range value panics instead of
// silently leaving the flags unset.
func ConsistencyFlags(l policy.ConsistencyLevel) uint8 {
	switch l {
	case policy.ConsistencyOne:
		return 0
	case policy.ConsistencyAll:
		return Info1ConsistencyAll
	default:
		panic(fmt.Sprintf("unknown consistency level: %d", l))
	}
}

// ConsistencyFromFlags is the inverse of ConsistencyFlags.
func ConsistencyFromFlags(info1 uint8) policy.ConsistencyLevel {
	if info1&Info1ConsistencyAll != 0 {
		return policy.ConsistencyAll
	}

	return policy.ConsistencyOne
}

// CommitFlags maps a commit level to its Info3 bits.
func CommitFlags(l policy.CommitLevel) uint8 {
	switch l {
	case policy.CommitAll:
		return 0
	case policy.CommitMaster:
		return Info3CommitMaster
	default:
		panic(fmt.Sprintf("unknown commit level: %d", l))
	}
}

// CommitFromFlags is the inverse of CommitFlags.
func CommitFromFlags(info3 uint8) policy.CommitLevel {
	if info3&Info3CommitMaster != 0 {
		return policy.CommitMaster
	}

	return policy.CommitAll
}
