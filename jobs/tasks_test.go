package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/solstice-id/solstice/internal/jobs"
	"github.com/solstice-id/solstice/internal/mail"
)

type captureSender struct {
	sent []mail.Message
	err  error
}

func (s *captureSender) Send(_ context.Context, msg mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newHandler(sender *captureSender) *MailHandler {
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	return NewMailHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), sender, metrics)
}

func TestHandleWelcomeEmail(t *testing.T) {
	sender := &captureSender{}
	h := newHandler(sender)

	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{To: "bob@x.com", Username: "bob"})
	require.NoError(t, err)

	require.NoError(t, h.HandleWelcomeEmail(context.Background(), task))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "bob@x.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Text, "bob")
}

func TestHandleWelcomeEmailBadPayloadSkipsRetry(t *testing.T) {
	h := newHandler(&captureSender{})

	task := asynq.NewTask(TaskTypeWelcomeEmail, []byte("{not json"))
	err := h.HandleWelcomeEmail(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleWelcomeEmailPropagatesSendFailure(t *testing.T) {
	sendErr := errors.New("smtp down")
	h := newHandler(&captureSender{err: sendErr})

	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{To: "bob@x.com", Username: "bob"})
	require.NoError(t, err)

	assert.ErrorIs(t, h.HandleWelcomeEmail(context.Background(), task), sendErr)
}
