package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSigner("super-secret").WithClock(fixedClock(now))

	tok, exp, err := s.Issue(MagicLink, "user-1", "a@example.com", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), exp)

	claims, err := s.Parse(MagicLink, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestIssue_DistinctInSameSecond(t *testing.T) {
	t.Parallel()

	s := NewSigner("k").WithClock(fixedClock(time.Unix(1700000000, 0)))
	a, _, err := s.Issue(MagicLink, "u", "e@example.com", time.Minute)
	require.NoError(t, err)
	b, _, err := s.Issue(MagicLink, "u", "e@example.com", time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	issuer := NewSigner("k").WithClock(fixedClock(now))
	tok, _, err := issuer.Issue(MagicLink, "u", "e@example.com", time.Minute)
	require.NoError(t, err)

	later := issuer.WithClock(fixedClock(now.Add(2 * time.Minute)))
	_, err = later.Parse(MagicLink, tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewSigner("right").Issue(MagicLink, "u", "e@example.com", time.Hour)
	require.NoError(t, err)

	_, err = NewSigner("wrong").Parse(MagicLink, tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	s := NewSigner("k")
	for _, in := range []string{"", "not-a-jwt", "a.b.c", strings.Repeat("x", 40)} {
		_, err := s.Parse(MagicLink, in)
		assert.ErrorIs(t, err, ErrInvalid, "input %q", in)
	}
}

func TestParse_RejectsOtherPurpose(t *testing.T) {
	t.Parallel()

	s := NewSigner("k")
	link, _, err := s.Issue(MagicLink, "u", "e@example.com", time.Hour)
	require.NoError(t, err)
	access, _, err := s.Issue(Access, "u", "e@example.com", time.Hour)
	require.NoError(t, err)

	_, err = s.Parse(Access, link)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.Parse(MagicLink, access)
	assert.ErrorIs(t, err, ErrInvalid)

	claims, err := s.Parse(Access, access)
	require.NoError(t, err)
	assert.Equal(t, jwt.ClaimStrings{"access"}, claims.Audience)
}

func TestParse_RejectsMissingPurpose(t *testing.T) {
	t.Parallel()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewSigner("k").Parse(Access, tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Audience:  jwt.ClaimStrings{string(MagicLink)},
		},
		UserID: "u",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewSigner("k").Parse(MagicLink, tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_MissingUserID(t *testing.T) {
	t.Parallel()

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		Audience:  jwt.ClaimStrings{string(MagicLink)},
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewSigner("k").Parse(MagicLink, tok)
	assert.ErrorIs(t, err, ErrInvalid)
}
