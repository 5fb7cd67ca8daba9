package jwt_test

import (
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	jwtx "github.com/quipulabs/centinela/internal/jwt"
)

func testIssuer() *jwtx.Issuer {
	return jwtx.NewIssuer("centinela-test", []byte("secreto-de-test"), time.UTC)
}

func TestIssueAccessRoundtrip(t *testing.T) {
	iss := testIssuer()
	snap := jwtx.Snapshot{
		UserID:   42,
		Email:    "ana@example.com",
		Roles:    []string{"Administrador", "Editor"},
		Permisos: []string{"users.read", "users.write"},
	}

	token, exp, err := iss.IssueAccess(snap)
	require.NoError(t, err)
	require.True(t, exp.After(time.Now()))

	claims, err := iss.Validate(token, jwtx.TypeAccess)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.ID)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "ana@example.com", claims.Email)
	require.Equal(t, []string{"Administrador", "Editor"}, claims.Roles)
	require.Equal(t, []string{"users.read", "users.write"}, claims.Permisos)
	require.Equal(t, jwtx.TypeAccess, claims.Type)
	require.NotEmpty(t, claims.RegisteredClaims.ID) // jti
}

func TestRefreshRejectedAsAccess(t *testing.T) {
	iss := testIssuer()
	token, _, err := iss.IssueRefresh(jwtx.Snapshot{UserID: 7, Email: "x@y.z"})
	require.NoError(t, err)

	// Bien formado y sin expirar, pero el tipo no coincide.
	_, err = iss.Validate(token, jwtx.TypeAccess)
	require.ErrorIs(t, err, jwtx.ErrWrongType)

	claims, err := iss.Validate(token, jwtx.TypeRefresh)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.ID)
}

func TestValidateExpired(t *testing.T) {
	iss := testIssuer()
	iss.AccessTTL = -2 * time.Minute // más allá del leeway

	token, _, err := iss.IssueAccess(jwtx.Snapshot{UserID: 1})
	require.NoError(t, err)

	_, err = iss.Validate(token, jwtx.TypeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestValidateTamperedSignature(t *testing.T) {
	iss := testIssuer()
	token, _, err := iss.IssueAccess(jwtx.Snapshot{UserID: 1})
	require.NoError(t, err)

	otro := jwtx.NewIssuer("centinela-test", []byte("otro-secreto"), time.UTC)
	_, err = otro.Validate(token, jwtx.TypeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestValidateMalformed(t *testing.T) {
	iss := testIssuer()
	for _, raw := range []string{"", "garbage", "a.b.c", strings.Repeat("x", 512)} {
		_, err := iss.Validate(raw, jwtx.TypeAccess)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken, "token %q", raw)
	}
}

func TestValidateWrongIssuer(t *testing.T) {
	otro := jwtx.NewIssuer("otro-servicio", []byte("secreto-de-test"), time.UTC)
	token, _, err := otro.IssueAccess(jwtx.Snapshot{UserID: 1})
	require.NoError(t, err)

	_, err = testIssuer().Validate(token, jwtx.TypeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestValidateRejectsNoneAlg(t *testing.T) {
	// Un token sin firma no debe pasar aunque las claims sean válidas.
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{
		"iss":  "centinela-test",
		"sub":  "1",
		"exp":  time.Now().Add(time.Hour).Unix(),
		"type": "access",
	})
	raw, err := tk.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = testIssuer().Validate(raw, jwtx.TypeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestEmptySlicesNotNil(t *testing.T) {
	iss := testIssuer()
	token, _, err := iss.IssueAccess(jwtx.Snapshot{UserID: 3, Email: "sin@roles.com"})
	require.NoError(t, err)

	claims, err := iss.Validate(token, jwtx.TypeAccess)
	require.NoError(t, err)
	require.NotNil(t, claims.Roles)
	require.NotNil(t, claims.Permisos)
	require.Empty(t, claims.Roles)
	require.Empty(t, claims.Permisos)
}
