package password_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quipulabs/centinela/internal/security/password"
)

func TestHashVerifyRoundtrip(t *testing.T) {
	h, err := password.HashWithCost("s3creta!", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "s3creta!", h)

	require.True(t, password.Verify("s3creta!", h))
	require.False(t, password.Verify("otra-clave", h))
}

func TestHashUnicode(t *testing.T) {
	h, err := password.HashWithCost("contraseña-niño-🔑", bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, password.Verify("contraseña-niño-🔑", h))
	require.False(t, password.Verify("contrasena-nino", h))
}

func TestHashEmptyPassword(t *testing.T) {
	_, err := password.Hash("")
	require.Error(t, err)
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := password.HashWithCost("misma", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := password.HashWithCost("misma", bcrypt.MinCost)
	require.NoError(t, err)
	// Salt distinto por hash: los digests no pueden coincidir.
	require.NotEqual(t, h1, h2)
	require.True(t, password.Verify("misma", h1))
	require.True(t, password.Verify("misma", h2))
}

func TestVerifyGarbageHash(t *testing.T) {
	require.False(t, password.Verify("algo", "no-es-un-hash"))
	require.False(t, password.Verify("algo", ""))
}
