package transport_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/citrinedb/citrine-go/transport"
)

func pipeConn(t *testing.T) (*transport.Conn, net.Conn) {
	t.Helper()

	client, server := net.Pipe()

	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})

	return transport.NewConn(client), server
}

func TestConn_ReadDeadline(t *testing.T) {
	conn, _ := pipeConn(t)

	started := time.Now()
	conn.SetDeadline(started.Add(100*time.Millisecond), 20*time.Millisecond)

	_, err := conn.ReadFull(make([]byte, 4))
	elapsed := time.Since(started)

	require.ErrorIs(t, err, transport.ErrDeadlineExceeded)
	require.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	require.Less(t, elapsed, time.Second)
}

func TestConn_ReadAccumulatesPartial(t *testing.T) {
	conn, server := pipeConn(t)
	conn.SetDeadline(time.Now().Add(2*time.Second), 50*time.Millisecond)

	go func() {
		for _, chunk := range []string{"he", "ll", "o!"} {
			time.Sleep(10 * time.Millisecond)
			_, _ = server.Write([]byte(chunk))
		}
	}()

	buf := make([]byte, 6)
	n, err := conn.ReadFull(buf)

	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, []byte("hello!"), buf)
}

func TestConn_ReadPeerClosed(t *testing.T) {
	conn, server := pipeConn(t)
	conn.SetDeadline(time.Now().Add(time.Second), 50*time.Millisecond)

	go func() {
		_, _ = server.Write([]byte("hi"))
		_ = server.Close()
	}()

	_, err := conn.ReadFull(make([]byte, 10))
	require.ErrorIs(t, err, transport.ErrConnectionClosed)
}

func TestConn_WriteDeadline(t *testing.T) {
	conn, _ := pipeConn(t)

	started := time.Now()
	conn.SetDeadline(started.Add(100*time.Millisecond), 20*time.Millisecond)

	// Nobody reads from the other end of the pipe, so the write can
	// never complete.
	_, err := conn.WriteFull(make([]byte, 1024))
	elapsed := time.Since(started)

	require.ErrorIs(t, err, transport.ErrDeadlineExceeded)
	require.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	require.Less(t, elapsed, time.Second)
}

func TestConn_ReadForever(t *testing.T) {
	conn, server := pipeConn(t)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = server.Write([]byte("late"))
	}()

	buf := make([]byte, 4)
	n, err := conn.ReadForever(buf)

	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte("late"), buf)
}

func TestConn_CloseTwice(t *testing.T) {
	conn, _ := pipeConn(t)

	require.False(t, conn.IsClosed())
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	require.True(t, conn.IsClosed())
}
