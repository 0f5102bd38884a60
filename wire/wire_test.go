package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citrinedb/citrine-go/policy"
	"github.com/citrinedb/citrine-go/wire"
)

func TestProtoHeader_RoundTrip(t *testing.T) {
	buf := make([]byte, wire.ProtoHeaderSize)
	wire.EncodeProto(buf, wire.TypeMessage, 12345)

	h, err := wire.DecodeProto(buf)
	require.NoError(t, err)

	require.Equal(t, uint8(wire.ProtoVersion), h.Version)
	require.Equal(t, wire.TypeMessage, h.Type)
	require.Equal(t, uint64(12345), h.Size)
}

func TestProtoHeader_Malformed(t *testing.T) {
	buf := make([]byte, wire.ProtoHeaderSize)

	wire.EncodeProto(buf, wire.TypeInfo, 10)
	buf[0] = 9 // wrong version
	_, err := wire.DecodeProto(buf)
	require.ErrorIs(t, err, wire.ErrProtocol)

	wire.EncodeProto(buf, 99, 10) // unknown frame type
	_, err = wire.DecodeProto(buf)
	require.ErrorIs(t, err, wire.ErrProtocol)

	wire.EncodeProto(buf, wire.TypeMessage, wire.MaxFrameSize+1)
	_, err = wire.DecodeProto(buf)
	require.ErrorIs(t, err, wire.ErrProtocol)
}

func TestMessageHeader_RoundTrip(t *testing.T) {
	in := wire.Header{
		Info1:          wire.Info1Read | wire.Info1GetAll,
		Info2:          wire.Info2Write,
		Info3:          wire.Info3CommitMaster,
		ResultCode:     uint8(wire.StatusNotFound),
		Generation:     7,
		Expiration:     3600,
		TransactionTTL: 250,
		FieldCount:     3,
		OpCount:        1,
	}

	buf := make([]byte, wire.HeaderSize)
	in.Encode(buf)

	var out wire.Header
	require.NoError(t, out.Decode(buf))
	require.Equal(t, in, out)
}

func TestMessageHeader_Malformed(t *testing.T) {
	var h wire.Header

	require.ErrorIs(t, h.Decode(make([]byte, 4)), wire.ErrProtocol)

	buf := make([]byte, wire.HeaderSize)
	buf[0] = 99 // wrong embedded header size
	require.ErrorIs(t, h.Decode(buf), wire.ErrProtocol)
}

func TestPolicyFlags_RoundTrip(t *testing.T) {
	for _, l := range []policy.ConsistencyLevel{policy.ConsistencyOne, policy.ConsistencyAll} {
		require.Equal(t, l, wire.ConsistencyFromFlags(wire.ConsistencyFlags(l)))
	}

	for _, l := range []policy.CommitLevel{policy.CommitAll, policy.CommitMaster} {
		require.Equal(t, l, wire.CommitFromFlags(wire.CommitFlags(l)))
	}
}

func TestPolicyFlags_ClosedEnum(t *testing.T) {
	require.Panics(t, func() {
		wire.ConsistencyFlags(policy.ConsistencyLevel(42))
	})

	require.Panics(t, func() {
		wire.CommitFlags(policy.CommitLevel(42))
	})
}

func TestFields_RoundTrip(t *testing.T) {
	fields := []wire.Field{
		{Type: wire.FieldNamespace, Data: []byte("test")},
		{Type: wire.FieldSet, Data: []byte("users")},
		{Type: wire.FieldDigest, Data: make([]byte, 20)},
	}

	buf := make([]byte, wire.SizeFields(fields)+5)
	off := 0

	for _, f := range fields {
		off += wire.PutField(buf[off:], f.Type, f.Data)
	}

	copy(buf[off:], "tail!")

	parsed, rest, err := wire.ParseFields(buf, len(fields))
	require.NoError(t, err)
	require.Equal(t, fields, parsed)
	require.Equal(t, []byte("tail!"), rest)
}

func TestFields_Truncated(t *testing.T) {
	_, _, err := wire.ParseFields([]byte{0, 0}, 1)
	require.ErrorIs(t, err, wire.ErrProtocol)

	buf := make([]byte, 16)
	wire.PutField(buf, wire.FieldSet, []byte("users"))

	_, _, err = wire.ParseFields(buf[:6], 1)
	require.ErrorIs(t, err, wire.ErrProtocol)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		status wire.Status
		want   wire.Disposition
	}{
		{wire.StatusTimeout, wire.DispositionRetry},
		{wire.StatusUnavailable, wire.DispositionRetry},
		{wire.StatusNotMaster, wire.DispositionRetry},
		{wire.StatusOverload, wire.DispositionRetry},
		{wire.StatusServerError, wire.DispositionCloseConn},
		{wire.StatusNotFound, wire.DispositionPermanent},
		{wire.StatusGeneration, wire.DispositionPermanent},
		{wire.StatusParameter, wire.DispositionPermanent},
		{wire.StatusKeyExists, wire.DispositionPermanent},
		{wire.StatusForbidden, wire.DispositionPermanent},
		{wire.Status(200), wire.DispositionPermanent}, // unknown codes never retry
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, wire.Classify(tt.status), "status %s", tt.status)
	}
}

func TestStatusError_Is(t *testing.T) {
	err := &wire.StatusError{Code: wire.StatusNotFound}

	require.ErrorIs(t, err, &wire.StatusError{Code: wire.StatusNotFound})
	require.NotErrorIs(t, err, &wire.StatusError{Code: wire.StatusTimeout})
}
