// Package auth implements passwordless sign-in: magic-link issuing and
// redemption, plus the guard that resolves bearer credentials to users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/metrics"
	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
	"github.com/namgaylhamo24/quick-post-02240350/internal/notify"
	"github.com/namgaylhamo24/quick-post-02240350/internal/store"
	"github.com/namgaylhamo24/quick-post-02240350/internal/token"
	"github.com/namgaylhamo24/quick-post-02240350/internal/validate"
)

const (
	DefaultMagicLinkTTL   = 15 * time.Minute
	DefaultAccessTokenTTL = 7 * 24 * time.Hour
)

// Options configure the token service
type Options struct {
	FrontendURL       string
	MagicLinkTTL      time.Duration
	AccessTokenTTL    time.Duration
	SingleActiveToken bool // delete older links for the email when a new one is requested
}

// VerifyResult is returned by a successful Verify
type VerifyResult struct {
	User        model.PublicUser `json:"user"`
	AccessToken string           `json:"accessToken"`
	ExpiresAt   time.Time        `json:"expiresAt"`
}

// Service issues and redeems magic links
type Service struct {
	store    *store.Store
	signer   *token.Signer
	notifier notify.Notifier
	validate *validate.Validator
	opts     Options
	now      func() time.Time
}

func NewService(st *store.Store, signer *token.Signer, n notify.Notifier, opts Options) *Service {
	if opts.MagicLinkTTL <= 0 {
		opts.MagicLinkTTL = DefaultMagicLinkTTL
	}
	if opts.AccessTokenTTL <= 0 {
		opts.AccessTokenTTL = DefaultAccessTokenTTL
	}
	return &Service{
		store:    st,
		signer:   signer,
		notifier: n,
		validate: validate.New(),
		opts:     opts,
		now:      time.Now,
	}
}

// WithClock makes the service and its signer read time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	cp.signer = s.signer.WithClock(now)
	return &cp
}

// RequestMagicLink finds or creates the user for email, stores a fresh
// single-use token and hands the link to the notifier. The outcome is the same
// for new and existing users, and delivery failures are only logged.
func (s *Service) RequestMagicLink(ctx context.Context, email string) error {
	if err := s.validate.Var("Invalid email address", email, "required,email"); err != nil {
		return err
	}

	user, err := s.findOrCreateUser(ctx, email)
	if err != nil {
		return err
	}

	signed, expires, err := s.signer.Issue(token.MagicLink, user.ID, user.Email, s.opts.MagicLinkTTL)
	if err != nil {
		return fmt.Errorf("issue magic link: %w", err)
	}

	vt := &model.VerificationToken{
		Identifier: email,
		Token:      signed,
		Expires:    expires,
		CreatedAt:  s.now(),
	}
	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		if s.opts.SingleActiveToken {
			if _, err := q.Tokens().DeleteByIdentifier(ctx, email); err != nil {
				return err
			}
		}
		return q.Tokens().Create(ctx, vt)
	})
	if err != nil {
		return fmt.Errorf("save verification token: %w", err)
	}

	link := notify.MagicLink{
		Email:     email,
		Token:     signed,
		URL:       notify.VerifyURL(s.opts.FrontendURL, signed),
		ExpiresAt: expires,
	}
	if err := s.notifier.SendMagicLink(ctx, link); err != nil {
		metrics.RecordMagicLink("failed")
		logger.Error("Failed to deliver magic link",
			logger.F("email", email),
			logger.F("error", err))
		return nil
	}

	// a queueing notifier records the final outcome itself
	if _, queued := s.notifier.(*notify.Async); !queued {
		metrics.RecordMagicLink("sent")
	}
	logger.Info("Magic link issued",
		logger.F("user_id", user.ID),
		logger.F("expires_at", expires))
	return nil
}

func (s *Service) findOrCreateUser(ctx context.Context, email string) (*model.User, error) {
	users := s.store.Users()

	user, err := users.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	now := s.now()
	user = &model.User{Email: email, CreatedAt: now, UpdatedAt: now}
	err = users.Create(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		// created concurrently by another request
		return users.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Verify redeems a magic-link token and returns a 7-day access credential.
// The stored token is consumed in the same transaction that marks the email
// verified, so a token succeeds at most once.
func (s *Service) Verify(ctx context.Context, signed string) (*VerifyResult, error) {
	claims, err := s.signer.Parse(token.MagicLink, signed)
	switch {
	case errors.Is(err, token.ErrExpired):
		metrics.RecordVerification("expired")
		return nil, apperr.Wrap(apperr.ErrExpiredOrInvalidToken, err)
	case err != nil:
		metrics.RecordVerification("invalid")
		return nil, apperr.Wrap(apperr.ErrInvalidToken, err)
	}

	now := s.now()
	var user *model.User
	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.Tokens().Consume(ctx, signed, now); err != nil {
			return err
		}
		var err error
		user, err = q.Users().MarkEmailVerified(ctx, claims.UserID, now)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordVerification(s.rejectReason(ctx, signed))
			return nil, apperr.Wrap(apperr.ErrExpiredOrInvalidToken, err)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	access, expiresAt, err := s.signer.Issue(token.Access, user.ID, user.Email, s.opts.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	metrics.RecordVerification("ok")
	return &VerifyResult{
		User:        user.Public(),
		AccessToken: access,
		ExpiresAt:   expiresAt,
	}, nil
}

// rejectReason tells a lapsed record ("expired") from one that was consumed or
// never stored ("unknown"). It only feeds metrics; callers see one error.
func (s *Service) rejectReason(ctx context.Context, signed string) string {
	if _, err := s.store.Tokens().Find(ctx, signed); err == nil {
		return "expired"
	}
	return "unknown"
}

// Me returns the profile of the authenticated user
func (s *Service) Me(ctx context.Context, id model.Identity) (model.PublicUser, error) {
	user, err := s.store.Users().FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.PublicUser{}, apperr.Wrap(apperr.ErrUnknownUser, err)
		}
		return model.PublicUser{}, fmt.Errorf("find user: %w", err)
	}
	return user.Public(), nil
}

// SweepExpired deletes verification tokens that can no longer be redeemed.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.store.Tokens().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep tokens: %w", err)
	}
	metrics.RecordSweep(n)
	return n, nil
}
