// Package singleinstance keeps two solvers from answering the same screen.
// The owner holds a loopback TCP port and answers PING with its mode.
package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"quiz-ocr-llm/src/logutil"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongPrefix   = "PONG "

	DefaultPort = 49500
)

var ErrAlreadyRunning = errors.New("another solver is already running")

var siLog = logutil.Module("singleinstance")

// Guard is held by the running solver until Release.
type Guard struct {
	lis  net.Listener
	mode string
	once sync.Once
}

// Acquire claims port for a solver running in mode. When the port is held
// by another solver the error wraps ErrAlreadyRunning and names its mode.
func Acquire(ctx context.Context, port int, mode string) (*Guard, error) {
	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		if other, ok := Detect(ctx, port); ok {
			return nil, fmt.Errorf("%w (%s mode, port %d)", ErrAlreadyRunning, other, port)
		}
		return nil, fmt.Errorf("singleinstance: bind %s: %w", addr, err)
	}
	g := &Guard{lis: lis, mode: mode}
	siLog.Debug().Str("addr", addr).Str("mode", mode).Msg("instance guard acquired")
	go g.serve()
	return g, nil
}

// Port returns the bound port.
func (g *Guard) Port() int {
	return g.lis.Addr().(*net.TCPAddr).Port
}

func (g *Guard) serve() {
	for {
		c, err := g.lis.Accept()
		if err != nil {
			return
		}
		go g.answer(c)
	}
}

func (g *Guard) answer(c net.Conn) {
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil || line != pingRequest {
		return
	}
	_, _ = c.Write([]byte(pongPrefix + g.mode + "\n"))
}

// Release frees the port. Safe to call more than once.
func (g *Guard) Release() error {
	var err error
	g.once.Do(func() {
		err = g.lis.Close()
	})
	return err
}

// Detect pings port and returns the mode of the solver holding it.
func Detect(ctx context.Context, port int) (string, bool) {
	timeout := 300 * time.Millisecond
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < timeout {
			timeout = d
		}
	}
	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return "", false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil || !strings.HasPrefix(resp, pongPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(resp, pongPrefix)), true
}
