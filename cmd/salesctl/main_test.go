package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/jrsteele09/go-sales-client/internal/fakebackend"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *fakebackend.Backend {
	t.Helper()
	backend := fakebackend.Serve(t, fakebackend.WithLogger(zerolog.Nop()))
	t.Setenv("SALES_API_URL", backend.URL)
	t.Setenv("SALES_STORAGE_BACKEND", "sqlite")
	t.Setenv("SALES_DATA_FOLDER", t.TempDir())
	t.Setenv("SALES_PASSWORD", "")
	return backend
}

func salesctl(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), err
}

func login(t *testing.T, email, password string) {
	t.Helper()
	_, err := salesctl(t, "login", "--email", email, "--password", password)
	require.NoError(t, err)
}

func TestLoginIsRememberedBetweenRuns(t *testing.T) {
	backend := setup(t)

	out, err := salesctl(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")

	login(t, fakebackend.AdminEmail, fakebackend.AdminPassword)

	out, err = salesctl(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, fakebackend.AdminEmail)
	require.Contains(t, out, "(admin)")
	require.Contains(t, out, "Token expires:")
	require.Equal(t, 1, backend.Calls("GET /auth/me"))

	out, err = salesctl(t, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")

	out, err = salesctl(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")
}

func TestLoginFailureShowsBackendDetail(t *testing.T) {
	setup(t)
	_, err := salesctl(t, "login", "--email", fakebackend.AdminEmail, "--password", "nope")
	require.ErrorContains(t, err, fakebackend.DefaultLoginDetail)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestSellerCannotOpenAdminCommands(t *testing.T) {
	setup(t)
	login(t, fakebackend.SellerEmail, fakebackend.SellerPassword)

	_, err := salesctl(t, "products")
	require.ErrorContains(t, err, "not allowed for your role (redirected to /dashboard)")

	_, err = salesctl(t, "ranking")
	require.ErrorContains(t, err, "not allowed for your role")

	out, err := salesctl(t, "record-sale", "--product", "1", "--qty", "2", "--price", "45")
	require.NoError(t, err)
	require.Contains(t, out, "Estimated commission: 4.50")
	require.Contains(t, out, "commission 4.50")

	out, err = salesctl(t, "sales")
	require.NoError(t, err)
	require.Contains(t, out, "Teclado")
}

func TestAnonymousCommandsAskForLogin(t *testing.T) {
	setup(t)
	_, err := salesctl(t, "sales")
	require.ErrorContains(t, err, "not logged in")
	require.ErrorIs(t, err, apperrors.ErrNoSession)

	out, err := salesctl(t, "open", "/")
	require.NoError(t, err)
	require.Contains(t, out, "/ -> /dashboard")
	require.Contains(t, out, "/dashboard -> /login")
	require.Contains(t, out, "render /login")
}

func TestAdminCommands(t *testing.T) {
	setup(t)
	login(t, fakebackend.AdminEmail, fakebackend.AdminPassword)

	out, err := salesctl(t, "products", "--low-stock")
	require.NoError(t, err)
	require.Contains(t, out, "Ratón")
	require.NotContains(t, out, "Teclado")

	out, err = salesctl(t, "metrics")
	require.NoError(t, err)
	require.Contains(t, out, "Products")

	file := filepath.Join(t.TempDir(), "ventas.csv")
	out, err = salesctl(t, "export", "csv", "--out", file)
	require.NoError(t, err)
	require.Contains(t, out, file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), "id,vendedor,producto")
}

func TestRevokedTokenLogsOut(t *testing.T) {
	backend := setup(t)
	login(t, fakebackend.SellerEmail, fakebackend.SellerPassword)
	backend.RevokeAll()

	out, err := salesctl(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")
}

func TestVersionNeedsNoBackend(t *testing.T) {
	t.Setenv("SALES_STORAGE_BACKEND", "etcd")
	out, err := salesctl(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "salesctl")
}
