package cursor

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec(testSecret)

	cases := []Cursor{
		{WalletIndex: 0, ChainIndex: 1, ItemOffset: 2, LiveData: true},
		{WalletIndex: 3, ChainIndex: 0, ProviderToken: "eyJwYWdlIjoyfQ==", LiveData: true},
		{ItemOffset: 40},
	}
	for _, c := range cases {
		token, err := codec.Encode(c)
		require.NoError(t, err)

		got, err := codec.Decode(token)
		require.NoError(t, err)

		c.Version = CurrentVersion
		assert.Equal(t, c, got)
	}
}

func TestCodec_RejectsTampering(t *testing.T) {
	codec := NewCodec(testSecret)
	token, err := codec.Encode(Cursor{WalletIndex: 1, LiveData: true})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, err := NewCodec([]byte("another-secret-another-secret-00")).Encode(Cursor{WalletIndex: 9, LiveData: true})
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	// Payload of one token with the signature of another.
	_, err = codec.Decode(forgedParts[0] + "." + forgedParts[1] + "." + parts[2])
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = codec.Decode(forged)
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = codec.Decode("not-a-cursor")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestCodec_RejectsOtherAlgorithms(t *testing.T) {
	codec := NewCodec(testSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims{
		Cursor:           Cursor{Version: CurrentVersion},
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	})
	s, err := token.SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.Decode(s)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestCodec_RejectsUnknownVersionAndIssuer(t *testing.T) {
	codec := NewCodec(testSecret)

	sign := func(cl claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(testSecret)
		require.NoError(t, err)
		return s
	}

	_, err := codec.Decode(sign(claims{
		Cursor:           Cursor{Version: CurrentVersion + 1},
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}))
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = codec.Decode(sign(claims{
		Cursor:           Cursor{Version: CurrentVersion},
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	}))
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = codec.Decode(sign(claims{
		Cursor:           Cursor{Version: CurrentVersion, ItemOffset: -1},
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}))
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
