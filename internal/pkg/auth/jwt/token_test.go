package jwt

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticehub/internal/pkg/errs"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCodec(t *testing.T, secret string) (*Codec, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: epoch}
	c, err := NewCodec(secret, WithClock(clock.Now))
	require.NoError(t, err)
	return c, clock
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	c, clock := newTestCodec(t, "s3cret")

	token, err := c.Encode(42, time.Hour)
	require.NoError(t, err)

	clock.t = epoch.Add(59 * time.Minute)
	claims, err := c.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, epoch.Add(time.Hour), claims.Expiry().UTC())
}

func TestDecode_ExpiryBoundary(t *testing.T) {
	c, clock := newTestCodec(t, "s3cret")

	token, err := c.Encode(7, 10*time.Minute)
	require.NoError(t, err)

	for _, at := range []time.Duration{10 * time.Minute, 11 * time.Minute, 48 * time.Hour} {
		clock.t = epoch.Add(at)
		_, err := c.Decode(token)
		require.Error(t, err, "at +%s", at)
		assert.True(t, errs.IsCode(err, errs.ErrTokenExpired), "at +%s: %v", at, err)
		assert.Equal(t, errs.KindInvalidToken, errs.KindOf(err))
	}
}

func TestEncode_DefaultTTL(t *testing.T) {
	c, clock := newTestCodec(t, "s3cret")

	token, err := c.Encode(1, 0)
	require.NoError(t, err)

	clock.t = epoch.Add(DefaultTTL - time.Second)
	_, err = c.Decode(token)
	require.NoError(t, err)

	clock.t = epoch.Add(DefaultTTL)
	_, err = c.Decode(token)
	assert.True(t, errs.IsCode(err, errs.ErrTokenExpired))
}

func TestEncode_Deterministic(t *testing.T) {
	c, _ := newTestCodec(t, "s3cret")

	a, err := c.Encode(5, time.Hour)
	require.NoError(t, err)
	b, err := c.Encode(5, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEncode_WirePayload(t *testing.T) {
	c, _ := newTestCodec(t, "s3cret")

	token, err := c.Encode(9, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.EqualValues(t, 9, payload["user_id"])
	assert.EqualValues(t, epoch.Add(time.Hour).Unix(), payload["exp"])
	assert.Len(t, payload, 2)
}

func TestDecode_WrongSecret(t *testing.T) {
	issuer, _ := newTestCodec(t, "old-secret")
	verifier, _ := newTestCodec(t, "new-secret")

	token, err := issuer.Encode(3, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Decode(token)
	assert.True(t, errs.IsCode(err, errs.ErrTokenSignatureInvalid), "%v", err)
}

func TestDecode_TamperedPayload(t *testing.T) {
	c, _ := newTestCodec(t, "s3cret")

	token, err := c.Encode(3, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":1,"exp":9999999999}`))
	_, err = c.Decode(parts[0] + "." + forged + "." + parts[2])

	assert.True(t, errs.IsCode(err, errs.ErrTokenSignatureInvalid), "%v", err)
}

func TestDecode_Malformed(t *testing.T) {
	c, _ := newTestCodec(t, "s3cret")

	for _, tok := range []string{"", "abc", "a.b.c", "Bearer x.y.z"} {
		_, err := c.Decode(tok)
		assert.True(t, errs.IsCode(err, errs.ErrTokenMalformed), "%q: %v", tok, err)
	}
}

func TestDecode_RejectsOtherAlgorithms(t *testing.T) {
	c, _ := newTestCodec(t, "s3cret")

	claims := Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour))}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = c.Decode(token)
	assert.True(t, errs.IsCode(err, errs.ErrTokenSignatureInvalid), "%v", err)
}

func TestDecode_RequiresExpAndUser(t *testing.T) {
	c, _ := newTestCodec(t, "s3cret")

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = c.Decode(noExp)
	assert.True(t, errs.IsCode(err, errs.ErrTokenMalformed), "%v", err)

	noUser, err := c.Encode(0, time.Hour)
	require.NoError(t, err)
	_, err = c.Decode(noUser)
	assert.True(t, errs.IsCode(err, errs.ErrTokenMalformed), "%v", err)
}
