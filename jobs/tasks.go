package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/solstice-id/solstice/internal/jobs"
	"github.com/solstice-id/solstice/internal/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeWelcomeEmail is the task type for post-registration emails.
	TaskTypeWelcomeEmail = "mail:welcome"
)

// WelcomeEmailPayload describes a welcome email to a new account.
type WelcomeEmailPayload struct {
	To       string `json:"to"`
	Username string `json:"username"`
}

// NewWelcomeEmailTask constructs an Asynq task.
func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeWelcomeEmail, data), nil
}

// MailHandler processes mail tasks on the worker.
type MailHandler struct {
	logger  *slog.Logger
	sender  mail.Sender
	metrics *jobmetrics.Metrics
}

// NewMailHandler constructs a MailHandler. metrics may be nil.
func NewMailHandler(logger *slog.Logger, sender mail.Sender, metrics *jobmetrics.Metrics) *MailHandler {
	return &MailHandler{logger: logger, sender: sender, metrics: metrics}
}

// HandleWelcomeEmail processes TaskTypeWelcomeEmail tasks.
func (h *MailHandler) HandleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	track := h.metrics.Track(TaskTypeWelcomeEmail)
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return track.End(asynq.SkipRetry)
	}
	err := h.sender.Send(ctx, mail.Message{
		To:      payload.To,
		Subject: "Welcome to Solstice",
		Text:    fmt.Sprintf("Hi %s,\n\nYour account has been created.\n", payload.Username),
	})
	if err != nil {
		h.logger.Warn("welcome email delivery failed", slog.String("to", payload.To), slog.Any("error", err))
		return track.End(err)
	}
	return track.End(nil)
}
