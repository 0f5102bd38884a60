package client

import (
	"time"

	"github.com/citrinedb/citrine-go/digest"
	"github.com/citrinedb/citrine-go/policy"
	"github.com/citrinedb/citrine-go/wire"
)

// command is one framed request in the making: routing identity plus
// the header flags and opaque record payload it will carry.
type command struct {
	namespace string
	set       string
	key       []byte
	digest    digest.Digest

	info1 uint8
	info2 uint8
	info3 uint8

	payload []byte
}

// encode builds the complete request frame. The remaining request
// budget travels in the header so the server can stop working on a
// request its caller has already given up on.
func (cmd *command) encode(keyPolicy policy.KeyPolicy, remaining time.Duration) []byte {
	fields := []wire.Field{
		{Type: wire.FieldNamespace, Data: []byte(cmd.namespace)},
		{Type: wire.FieldSet, Data: []byte(cmd.set)},
		{Type: wire.FieldDigest, Data: cmd.digest[:]},
	}

	if keyPolicy == policy.KeySend && cmd.key != nil {
		fields = append(fields, wire.Field{Type: wire.FieldKey, Data: cmd.key})
	}

	size := wire.ProtoHeaderSize + wire.HeaderSize + wire.SizeFields(fields) + len(cmd.payload)
	buf := make([]byte, size)

	wire.EncodeProto(buf, wire.TypeMessage, uint64(size-wire.ProtoHeaderSize))

	var ttl uint32
	if remaining > 0 {
		ttl = uint32(remaining.Milliseconds())
	}

	header := wire.Header{
		Info1:          cmd.info1,
		Info2:          cmd.info2,
		Info3:          cmd.info3,
		TransactionTTL: ttl,
		FieldCount:     uint16(len(fields)),
	}
	header.Encode(buf[wire.ProtoHeaderSize:])

	off := wire.ProtoHeaderSize + wire.HeaderSize
	for _, f := range fields {
		off += wire.PutField(buf[off:], f.Type, f.Data)
	}

	copy(buf[off:], cmd.payload)

	return buf
}
