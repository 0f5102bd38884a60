package wire

import (
	"encoding/binary"
	"fmt"
)

// FieldType identifies a request field.
type FieldType uint8

const (
	FieldNamespace FieldType = 0
	FieldSet       FieldType = 1
	FieldKey       FieldType = 2
	FieldDigest    FieldType = 4
)

// Field is a single typed field of a message.
type Field struct {
	Type FieldType
	Data []byte
}

// fieldOverhead is the per-field framing cost: a four byte length
// (covering the type byte and the data) plus the type byte itself.
const fieldOverhead = 5

// SizeFields returns the encoded size of the given fields.
func SizeFields(fields []Field) int {
	size := 0
	for i := range fields {
		size += fieldOverhead + len(fields[i].Data)
	}

	return size
}

// PutField encodes one field into b and returns the number of bytes
// written.
func PutField(b []byte, typ FieldType, data []byte) int {
	binary.BigEndian.PutUint32(b[0:4], uint32(len(data)+1))
	b[4] = uint8(typ)
	copy(b[5:], data)

	return fieldOverhead + len(data)
}

// ParseFields decodes count fields from b, returning the fields and
// the remainder of the buffer.
func ParseFields(b []byte, count int) ([]Field, []byte, error) {
	fields := make([]Field, 0, count)

	for i := 0; i < count; i++ {
		if len(b) < fieldOverhead {
			return nil, nil, fmt.Errorf("%w: field %d truncated", ErrProtocol, i)
		}

		size := binary.BigEndian.Uint32(b[0:4])
		if size < 1 || int(size-1) > len(b)-fieldOverhead {
			return nil, nil, fmt.Errorf("%w: field %d size %d out of range", ErrProtocol, i, size)
		}

		fields = append(fields, Field{
			Type: FieldType(b[4]),
			Data: b[5 : 4+size],
		})

		b = b[4+size:]
	}

	return fields, b, nil
}
