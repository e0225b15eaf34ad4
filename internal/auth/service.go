package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/solstice-id/solstice/internal/account"
	"github.com/solstice-id/solstice/internal/mail"
	"github.com/solstice-id/solstice/internal/password"
	"github.com/solstice-id/solstice/internal/shared"
	"github.com/solstice-id/solstice/internal/token"
	"github.com/solstice-id/solstice/internal/verification"
	"github.com/solstice-id/solstice/jobs"
)

// WelcomeEnqueuer queues the best-effort welcome email after registration.
type WelcomeEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, payload jobs.WelcomeEmailPayload) (*asynq.TaskInfo, error)
}

// Service orchestrates registration, login and the credential-reset workflow
// on top of the credential store, the password hasher, the verification-code
// store and the token manager.
type Service struct {
	logger   *slog.Logger
	repo     account.Repository
	codes    verification.Store
	tokens   *token.Manager
	sender   mail.Sender
	queue    WelcomeEnqueuer
	validate *validator.Validate
}

// NewService constructs a Service. queue may be nil, in which case the
// welcome email is skipped.
func NewService(logger *slog.Logger, repo account.Repository, codes verification.Store, tokens *token.Manager, sender mail.Sender, queue WelcomeEnqueuer) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		codes:    codes,
		tokens:   tokens,
		sender:   sender,
		queue:    queue,
		validate: validator.New(),
	}
}

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// Register creates a new active account with a hashed password and the
// default role, then queues a welcome email. A queue failure is logged and
// never rolls the account back. Returns the public projection only.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*account.Account, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, validationDetail(err))
	}

	digest, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	acc, err := s.repo.Create(ctx, account.NewAccount{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: digest,
		FullName:     input.FullName,
		Phone:        input.Phone,
		Role:         account.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	if s.queue != nil {
		payload := jobs.WelcomeEmailPayload{To: acc.Email, Username: acc.Username}
		if _, err := s.queue.EnqueueWelcomeEmail(ctx, payload); err != nil {
			s.logger.Warn("enqueue welcome email", slog.String("email", acc.Email), slog.Any("error", err))
		}
	}
	return acc, nil
}

// LoginResult is the successful outcome of Login.
type LoginResult struct {
	Account *account.Account
	Token   string
}

// Login authenticates by username or email. Unknown identifiers and wrong
// passwords fail identically with ErrInvalidCredentials; a disabled account
// with correct credentials fails with ErrAccountDisabled.
func (s *Service) Login(ctx context.Context, identifier, plainPassword string) (*LoginResult, error) {
	rec, err := s.repo.FindForAuth(ctx, identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(plainPassword, rec.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}
	if rec.Status == account.StatusDisabled {
		return nil, shared.ErrAccountDisabled
	}

	signed, err := s.tokens.Issue(map[string]any{
		"sub":      rec.PublicID.String(),
		"username": rec.Username,
		"role":     rec.Role,
	})
	if err != nil {
		return nil, err
	}

	acc, err := s.repo.FindByPublicID(ctx, rec.PublicID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Account: acc, Token: signed}, nil
}

// ForgotPassword starts the reset flow. The caller always gets the same
// generic success whether or not the email is registered; internally a code
// is issued and mailed only for existing accounts. Because the email is the
// deliverable here, a delivery failure for an existing account fails the
// call.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Same externally observable outcome as the registered case.
			return nil
		}
		return err
	}

	code, err := s.codes.Issue(ctx, acc.Email, acc.ID)
	if err != nil {
		return err
	}

	err = s.sender.Send(ctx, mail.Message{
		To:      acc.Email,
		Subject: "Your password reset code",
		Text:    fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code),
	})
	if err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}
	return nil
}

// ResetPassword consumes a verification code and stores a fresh hash of the
// new password, invalidating the old one. Consume failures propagate with
// their specific kind.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", shared.ErrValidation)
	}

	userID, err := s.codes.Consume(ctx, email, code)
	if err != nil {
		return err
	}

	rec, err := s.repo.FindForAuthByID(ctx, userID)
	if err != nil {
		return err
	}

	digest, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, rec.ID, digest, rec.Version)
}

// ChangePassword rotates the password of an authenticated account. The
// identity comes from the verified bearer token upstream.
func (s *Service) ChangePassword(ctx context.Context, publicID uuid.UUID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", shared.ErrValidation)
	}
	if newPassword == oldPassword {
		return shared.ErrPasswordReuse
	}

	acc, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	rec, err := s.repo.FindForAuthByID(ctx, acc.ID)
	if err != nil {
		return err
	}
	if !password.Verify(oldPassword, rec.PasswordHash) {
		return shared.ErrInvalidCredentials
	}

	digest, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, rec.ID, digest, rec.Version)
}

// RefreshToken re-issues a token that is valid or expired within the grace
// window.
func (s *Service) RefreshToken(oldToken string) (string, error) {
	return s.tokens.Refresh(oldToken, nil)
}

// Account resolves the public projection for a verified subject claim.
func (s *Service) Account(ctx context.Context, publicID uuid.UUID) (*account.Account, error) {
	return s.repo.FindByPublicID(ctx, publicID)
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return fmt.Sprintf("field %s failed on %s", first.Field(), first.Tag())
	}
	return "invalid input"
}
