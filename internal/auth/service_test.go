package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
	"github.com/namgaylhamo24/quick-post-02240350/internal/metrics"
	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
	"github.com/namgaylhamo24/quick-post-02240350/internal/notify"
	"github.com/namgaylhamo24/quick-post-02240350/internal/store"
	"github.com/namgaylhamo24/quick-post-02240350/internal/store/storetest"
	"github.com/namgaylhamo24/quick-post-02240350/internal/token"
)

const testSecret = "test-secret"

type outbox struct {
	mu    sync.Mutex
	links []notify.MagicLink
	err   error
}

func (o *outbox) SendMagicLink(_ context.Context, link notify.MagicLink) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.links = append(o.links, link)
	return o.err
}

func (o *outbox) last(t *testing.T) notify.MagicLink {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.links)
	return o.links[len(o.links)-1]
}

// clock is a settable time source shared by the service and its signer.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc   *Service
	store *store.Store
	out   *outbox
	clock *clock
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	st := storetest.New(t)
	out := &outbox{}
	clk := &clock{now: time.Now().Truncate(time.Second)}
	if opts.FrontendURL == "" {
		opts.FrontendURL = "http://localhost:3000"
	}
	svc := NewService(st, token.NewSigner(testSecret), out, opts).WithClock(clk.Now)
	return &fixture{svc: svc, store: st, out: out, clock: clk}
}

func TestRequestMagicLink_CreatesUserAndToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "new@example.com"))

	user, err := f.store.Users().FindByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Nil(t, user.EmailVerified)

	link := f.out.last(t)
	assert.Equal(t, "new@example.com", link.Email)
	assert.Equal(t, "http://localhost:3000/auth/verify?token="+link.Token, link.URL)
	assert.WithinDuration(t, f.clock.Now().Add(DefaultMagicLinkTTL), link.ExpiresAt, time.Second)

	vt, err := f.store.Tokens().Find(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", vt.Identifier)
	assert.True(t, vt.Expires.Equal(link.ExpiresAt))

	claims, err := token.NewSigner(testSecret).WithClock(f.clock.Now).Parse(token.MagicLink, link.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "new@example.com", claims.Email)
}

func TestRequestMagicLink_ExistingUserSameOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "again@example.com"))
	first := f.out.last(t)
	require.NoError(t, f.svc.RequestMagicLink(ctx, "again@example.com"))
	second := f.out.last(t)

	assert.NotEqual(t, first.Token, second.Token, "tokens minted in the same second differ")

	// both links stay redeemable by default
	_, err := f.store.Tokens().Find(ctx, first.Token)
	assert.NoError(t, err)
	_, err = f.store.Tokens().Find(ctx, second.Token)
	assert.NoError(t, err)
}

func TestVerify_OutstandingTokensAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "pair@example.com"))
	first := f.out.last(t).Token
	f.clock.Advance(time.Minute)
	require.NoError(t, f.svc.RequestMagicLink(ctx, "pair@example.com"))
	second := f.out.last(t).Token
	require.NotEqual(t, first, second)

	_, err := f.svc.Verify(ctx, first)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, second)
	require.NoError(t, err, "consuming one link leaves the other redeemable")

	_, err = f.svc.Verify(ctx, first)
	assert.ErrorIs(t, err, apperr.ErrExpiredOrInvalidToken)
}

func TestRequestMagicLink_SingleActiveToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{SingleActiveToken: true})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "one@example.com"))
	first := f.out.last(t)
	require.NoError(t, f.svc.RequestMagicLink(ctx, "one@example.com"))
	second := f.out.last(t)

	_, err := f.store.Tokens().Find(ctx, first.Token)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.store.Tokens().Find(ctx, second.Token)
	assert.NoError(t, err)
}

func TestRequestMagicLink_InvalidEmail(t *testing.T) {
	f := newFixture(t, Options{})

	for _, email := range []string{"", "not-an-email", "a@"} {
		err := f.svc.RequestMagicLink(context.Background(), email)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err), email)
	}
	assert.Empty(t, f.out.links)
}

func TestRequestMagicLink_DeliveryFailureIsNotReturned(t *testing.T) {
	f := newFixture(t, Options{})
	f.out.err = errors.New("smtp down")

	require.NoError(t, f.svc.RequestMagicLink(context.Background(), "x@example.com"))

	_, err := f.store.Tokens().Find(context.Background(), f.out.last(t).Token)
	assert.NoError(t, err, "token is stored even when delivery fails")
}

func TestRequestMagicLink_QueuedDeliveryCountedOnce(t *testing.T) {
	ctx := context.Background()
	out := &outbox{err: errors.New("smtp: 550 mailbox unavailable")}
	async := notify.NewAsync(out, 4, time.Second)
	svc := NewService(storetest.New(t), token.NewSigner(testSecret), async, Options{FrontendURL: "http://localhost:3000"})

	count := func(outcome string) float64 {
		return testutil.ToFloat64(metrics.MagicLinksTotal.WithLabelValues(outcome))
	}
	sent, failed := count("sent"), count("failed")

	require.NoError(t, svc.RequestMagicLink(ctx, "queued@example.com"))
	require.NoError(t, async.Close(ctx))

	assert.Equal(t, sent, count("sent"), "a queued link is not reported as sent")
	assert.Equal(t, failed+1, count("failed"))
}

func TestRequestMagicLink_ConcurrentSameEmail(t *testing.T) {
	f := newFixture(t, Options{})

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.svc.RequestMagicLink(context.Background(), "race@example.com")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, f.out.links, 5)
}

func TestVerify_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "v@example.com"))
	link := f.out.last(t)

	f.clock.Advance(time.Minute)
	res, err := f.svc.Verify(ctx, link.Token)
	require.NoError(t, err)

	assert.Equal(t, "v@example.com", res.User.Email)
	require.NotNil(t, res.User.EmailVerified)
	assert.True(t, res.User.EmailVerified.Equal(f.clock.Now()))
	assert.WithinDuration(t, f.clock.Now().Add(DefaultAccessTokenTTL), res.ExpiresAt, time.Second)

	claims, err := token.NewSigner(testSecret).WithClock(f.clock.Now).Parse(token.Access, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	_, err = f.store.Tokens().Find(ctx, link.Token)
	assert.ErrorIs(t, err, store.ErrNotFound, "token row is deleted")
}

func TestVerify_SingleUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "once@example.com"))
	link := f.out.last(t)

	_, err := f.svc.Verify(ctx, link.Token)
	require.NoError(t, err)

	unknown := verifications("unknown")
	_, err = f.svc.Verify(ctx, link.Token)
	assert.ErrorIs(t, err, apperr.ErrExpiredOrInvalidToken)
	assert.Equal(t, unknown+1, verifications("unknown"), "consumed token")
}

func TestVerify_KeepsFirstVerificationTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "twice@example.com"))
	first, err := f.svc.Verify(ctx, f.out.last(t).Token)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.svc.RequestMagicLink(ctx, "twice@example.com"))
	second, err := f.svc.Verify(ctx, f.out.last(t).Token)
	require.NoError(t, err)

	assert.True(t, second.User.EmailVerified.Equal(*first.User.EmailVerified))
}

func TestVerify_ConcurrentOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "race@example.com"))
	tok := f.out.last(t).Token

	var ok, expired atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Verify(ctx, tok)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, apperr.ErrExpiredOrInvalidToken):
				expired.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(5), expired.Load())
}

func TestVerify_Expired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "late@example.com"))
	link := f.out.last(t)

	f.clock.Advance(DefaultMagicLinkTTL + time.Second)
	_, err := f.svc.Verify(ctx, link.Token)
	assert.ErrorIs(t, err, apperr.ErrExpiredOrInvalidToken)
}

func TestVerify_RecordExpiryIsIndependentOfSignature(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	user := &model.User{Email: "gate@example.com"}
	require.NoError(t, f.store.Users().Create(ctx, user))

	// the JWT is good for an hour but the stored record already lapsed
	signed, _, err := token.NewSigner(testSecret).WithClock(f.clock.Now).Issue(token.MagicLink, user.ID, user.Email, time.Hour)
	require.NoError(t, err)
	require.NoError(t, f.store.Tokens().Create(ctx, &model.VerificationToken{
		Identifier: user.Email,
		Token:      signed,
		Expires:    f.clock.Now().Add(-time.Second),
	}))

	expired := verifications("expired")
	_, err = f.svc.Verify(ctx, signed)
	assert.ErrorIs(t, err, apperr.ErrExpiredOrInvalidToken)
	assert.Equal(t, expired+1, verifications("expired"), "lapsed record still present")
}

func verifications(result string) float64 {
	return testutil.ToFloat64(metrics.VerificationsTotal.WithLabelValues(result))
}

func TestVerify_NeverStored(t *testing.T) {
	f := newFixture(t, Options{})

	signed, _, err := token.NewSigner(testSecret).WithClock(f.clock.Now).Issue(token.MagicLink, "ghost", "ghost@example.com", time.Minute)
	require.NoError(t, err)

	_, err = f.svc.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, apperr.ErrExpiredOrInvalidToken)
}

func TestVerify_InvalidToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	_, err := f.svc.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	forged, _, err := token.NewSigner("other-secret").Issue(token.MagicLink, "u", "u@example.com", time.Minute)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, forged)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestVerify_RejectsAccessCredential(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "swap@example.com"))
	res, err := f.svc.Verify(ctx, f.out.last(t).Token)
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, res.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	user := &model.User{Email: "me@example.com"}
	require.NoError(t, f.store.Users().Create(ctx, user))

	got, err := f.svc.Me(ctx, model.Identity{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.svc.Me(ctx, model.Identity{UserID: "missing"})
	assert.ErrorIs(t, err, apperr.ErrUnknownUser)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.RequestMagicLink(ctx, "a@example.com"))
	old := f.out.last(t)
	f.clock.Advance(DefaultMagicLinkTTL + time.Minute)
	require.NoError(t, f.svc.RequestMagicLink(ctx, "b@example.com"))
	fresh := f.out.last(t)

	n, err := f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.store.Tokens().Find(ctx, old.Token)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.store.Tokens().Find(ctx, fresh.Token)
	assert.NoError(t, err)
}
