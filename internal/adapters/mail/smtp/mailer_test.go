package smtp

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_SimulatedWhenUnconfigured(t *testing.T) {
	m := NewMailer(Config{Host: "smtp.example.com"})
	assert.True(t, m.Simulated())
	require.NoError(t, m.Send(context.Background(), "a@example.com", "Temat", "<p>hej</p>"))
}

func TestMailer_RelayFailureIsReported(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	p, _ := strconv.Atoi(port)

	m := NewMailer(Config{Host: "127.0.0.1", Port: p, User: "u", Pass: "p", From: "shop@example.com"})
	assert.False(t, m.Simulated())
	err = m.Send(context.Background(), "a@example.com", "Temat", "<p>hej</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a@example.com")
}

func TestMailer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMailer(Config{})
	require.ErrorIs(t, m.Send(ctx, "a@example.com", "Temat", ""), context.Canceled)
}
