package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "abcd1234", wantErr: false},
		{name: "valid with symbols", password: "p4ssw0rd!#", wantErr: false},
		{name: "too short", password: "abc1", wantErr: true},
		{name: "seven chars", password: "abcd123", wantErr: true},
		{name: "no digit", password: "abcdefgh", wantErr: true},
		{name: "no letter", password: "12345678", wantErr: true},
		{name: "empty", password: "", wantErr: true},
		{name: "too long", password: "a1" + strings.Repeat("x", 127), wantErr: true},
		{name: "max length", password: "a1" + strings.Repeat("x", 126), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrWeakPassword)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	digest, err := HashPassword("abcd1234")
	require.NoError(t, err)
	require.NotEqual(t, "abcd1234", digest)

	require.True(t, CheckPassword("abcd1234", digest))
	require.False(t, CheckPassword("wrong-pass1", digest))
}

func TestHashPassword_SaltedDigests(t *testing.T) {
	first, err := HashPassword("abcd1234")
	require.NoError(t, err)
	second, err := HashPassword("abcd1234")
	require.NoError(t, err)

	// bcrypt salts every digest, so identical plaintexts never collide.
	require.NotEqual(t, first, second)
	require.True(t, CheckPassword("abcd1234", first))
	require.True(t, CheckPassword("abcd1234", second))
}
