package singleinstance

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort finds a loopback port nobody is listening on.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestAcquireAndDetect(t *testing.T) {
	ctx := context.Background()
	port := freePort(t)

	g, err := Acquire(ctx, port, "watch")
	require.NoError(t, err)
	defer g.Release()
	assert.Equal(t, port, g.Port())

	mode, ok := Detect(ctx, port)
	assert.True(t, ok)
	assert.Equal(t, "watch", mode)
}

func TestSecondAcquireFails(t *testing.T) {
	ctx := context.Background()
	port := freePort(t)

	g, err := Acquire(ctx, port, "hotkey")
	require.NoError(t, err)
	defer g.Release()

	_, err = Acquire(ctx, port, "watch")
	require.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Contains(t, err.Error(), "hotkey mode")
}

func TestReleaseFreesPort(t *testing.T) {
	ctx := context.Background()
	port := freePort(t)

	g, err := Acquire(ctx, port, "watch")
	require.NoError(t, err)
	require.NoError(t, g.Release())
	assert.NoError(t, g.Release())

	_, ok := Detect(ctx, port)
	assert.False(t, ok)

	g2, err := Acquire(ctx, port, "watch")
	require.NoError(t, err)
	_ = g2.Release()
}

func TestForeignListenerIsNotASolver(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			_, _ = c.Write([]byte("HTTP/1.1 400 Bad Request\r\n"))
			_ = c.Close()
		}
	}()
	port := l.Addr().(*net.TCPAddr).Port

	_, ok := Detect(context.Background(), port)
	assert.False(t, ok)

	_, err = Acquire(context.Background(), port, "watch")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyRunning)
}
