package wire

import (
	"encoding/binary"
	"fmt"
)

const (
	// ProtoVersion is the only protocol version this client speaks.
	ProtoVersion = 2

	// ProtoHeaderSize is the size of the outer frame header: one byte
	// version, one byte type and six bytes of payload length.
	ProtoHeaderSize = 8

	// MaxFrameSize caps the declared payload length. Anything larger
	// is treated as framing corruption rather than a giant message.
	MaxFrameSize = 1 << 27
)

// Frame types.
const (
	TypeInfo    uint8 = 1
	TypeMessage uint8 = 3
)

// ProtoHeader is the fixed outer header preceding every frame. The
// header must be read first to learn how many payload bytes follow.
type ProtoHeader struct {
	Version uint8
	Type    uint8
	Size    uint64
}

// EncodeProto writes the outer frame header into b.
func EncodeProto(b []byte, typ uint8, size uint64) {
	binary.BigEndian.PutUint64(b[:ProtoHeaderSize],
		uint64(ProtoVersion)<<56|uint64(typ)<<48|size)
}

// DecodeProto parses and validates the outer frame header. A version
// or type mismatch, or an implausible size, is a protocol error: the
// stream is out of sync and the connection must be closed.
func DecodeProto(b []byte) (ProtoHeader, error) {
	v := binary.BigEndian.Uint64(b[:ProtoHeaderSize])

	h := ProtoHeader{
		Version: uint8(v >> 56),
		Type:    uint8(v >> 48),
		Size:    v & 0x0000FFFFFFFFFFFF,
	}

	if h.Version != ProtoVersion {
		return h, fmt.Errorf("%w: unexpected version %d", ErrProtocol, h.Version)
	}

	if h.Type != TypeInfo && h.Type != TypeMessage {
		return h, fmt.Errorf("%w: unexpected frame type %d", ErrProtocol, h.Type)
	}

	if h.Size > MaxFrameSize {
		return h, fmt.Errorf("%w: frame size %d out of range", ErrProtocol, h.Size)
	}

	return h, nil
}
