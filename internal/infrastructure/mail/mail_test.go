package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	messages []*gomail.Message
	err      error
}

func (s *recordingSender) DialAndSend(m ...*gomail.Message) error {
	s.messages = append(s.messages, m...)
	return s.err
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestMailer_SendOTP(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer("no-reply@seyyar.dz", sender)

	require.NoError(t, m.SendOTP(context.Background(), "amine@example.com", "123456"))
	require.Len(t, sender.messages, 1)

	msg := sender.messages[0]
	assert.Equal(t, []string{"amine@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"no-reply@seyyar.dz"}, msg.GetHeader("From"))
	assert.Contains(t, render(t, msg), "123456")
}

func TestMailer_SendPasswordReset(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer("no-reply@seyyar.dz", sender)

	link := "seyyar://reset-password?token=abc"
	require.NoError(t, m.SendPasswordReset(context.Background(), "sara@example.com", link))
	require.Len(t, sender.messages, 1)
	assert.Contains(t, render(t, sender.messages[0]), "seyyar://reset-password")
}

func TestMailer_WrapsTransportErrors(t *testing.T) {
	sender := &recordingSender{err: errors.New("connection refused")}
	m := NewMailer("no-reply@seyyar.dz", sender)

	err := m.SendOTP(context.Background(), "amine@example.com", "123456")
	assert.ErrorIs(t, err, sender.err)
}

func TestMailer_CancelledContext(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer("no-reply@seyyar.dz", sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.SendOTP(ctx, "amine@example.com", "123456"), context.Canceled)
	assert.Empty(t, sender.messages)
}
