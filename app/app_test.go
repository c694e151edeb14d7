package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-sales-client/api"
	"github.com/jrsteele09/go-sales-client/app"
	"github.com/jrsteele09/go-sales-client/guard"
	"github.com/jrsteele09/go-sales-client/internal/config"
	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/jrsteele09/go-sales-client/internal/fakebackend"
	"github.com/jrsteele09/go-sales-client/session"
	"github.com/jrsteele09/go-sales-client/token"
	tokenfakerepo "github.com/jrsteele09/go-sales-client/token/repofake"
	"github.com/jrsteele09/go-sales-client/users"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *fakebackend.Backend {
	t.Helper()
	b := fakebackend.Serve(t, fakebackend.WithLogger(zerolog.Nop()))
	t.Setenv("SALES_API_URL", b.URL)
	t.Setenv("SALES_STORAGE_BACKEND", "memory")
	t.Setenv("SALES_RESOLVE_TIMEOUT", "2s")
	return b
}

func newApp(t *testing.T, opts ...app.Option) *app.App {
	t.Helper()
	opts = append([]app.Option{app.WithLogger(zerolog.Nop())}, opts...)
	a, err := app.New(config.New(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return a
}

func startAndWait(t *testing.T, a *app.App) session.State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.Start(ctx)
	st, err := a.Wait(ctx)
	require.NoError(t, err)
	return st
}

func TestStoredAdminSessionOpensAdminPages(t *testing.T) {
	backend := newBackend(t)
	kv := tokenfakerepo.NewFakeKV()
	tok, err := backend.IssueToken(fakebackend.AdminEmail, time.Hour)
	require.NoError(t, err)
	admin, _ := backend.User(fakebackend.AdminEmail)
	require.NoError(t, token.NewKVStore(kv).Write(token.StoredCredential{Token: tok, User: admin}))

	a := newApp(t, app.WithKV(kv))
	st := startAndWait(t, a)

	require.Equal(t, session.StatusAuthenticated, st.Status())
	require.Equal(t, users.RoleAdmin, st.Role())
	require.Equal(t, guard.Decision{Action: guard.ActionRender, Path: guard.RouteProducts}, a.Router.Navigate(guard.RouteProducts))
	require.Equal(t, 1, backend.Calls("GET /auth/me"))
}

func TestEmptyStoreNeverCallsBackend(t *testing.T) {
	backend := newBackend(t)
	a := newApp(t)

	require.Equal(t, guard.ActionLoading, a.Router.Navigate(guard.RouteDashboard).Action)
	st := startAndWait(t, a)

	require.Equal(t, session.StatusAnonymous, st.Status())
	require.Zero(t, backend.Calls("GET /auth/me"))
	require.Equal(t, guard.Decision{Action: guard.ActionRedirect, Path: guard.RouteLogin}, a.Router.Navigate(guard.RouteDashboard))
}

func TestMalformedProfileEndsAnonymous(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "garbage"},
		{name: "empty object", body: "{}"},
		{name: "null", body: "null"},
		{name: "array", body: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newBackend(t)
			backend.SetMeBody([]byte(tt.body))
			kv := tokenfakerepo.NewFakeKV()
			tok, err := backend.IssueToken(fakebackend.SellerEmail, time.Hour)
			require.NoError(t, err)
			seller, _ := backend.User(fakebackend.SellerEmail)
			require.NoError(t, token.NewKVStore(kv).Write(token.StoredCredential{Token: tok, User: seller}))

			a := newApp(t, app.WithKV(kv))
			st := startAndWait(t, a)

			require.Equal(t, session.StatusAnonymous, st.Status())
			require.Nil(t, st.User)
			require.Equal(t, 1, backend.Calls("GET /auth/me"))
			require.Zero(t, kv.Len())
		})
	}
}

func TestRejectedLoginSurfacesDetail(t *testing.T) {
	backend := newBackend(t)
	backend.SetLoginDetail("Credenciales inválidas")
	a := newApp(t)
	startAndWait(t, a)

	err := a.Session.Login(context.Background(), users.Credentials{Email: "a@b.com", Password: "bad"})
	require.EqualError(t, err, "Credenciales inválidas")
	require.Equal(t, session.StatusAnonymous, a.Session.State().Status())
	require.Empty(t, a.LastNavigation())
}

func TestExpiredTokenMidSessionForcesLogin(t *testing.T) {
	backend := newBackend(t)
	var navigated []string
	a := newApp(t, app.WithNavigator(func(p string) { navigated = append(navigated, p) }))
	startAndWait(t, a)

	require.NoError(t, a.Session.Login(context.Background(), users.Credentials{
		Email:    fakebackend.SellerEmail,
		Password: fakebackend.SellerPassword,
	}))
	require.Equal(t, guard.ActionRender, a.Router.Navigate(guard.RouteSales).Action)

	sale, err := a.API.Sales.Record(context.Background(), api.SaleCreate{ProductID: 1, Quantity: 2, UnitPrice: 45})
	require.NoError(t, err)
	require.InDelta(t, 4.5, sale.Commission, 0.001)

	backend.RevokeAll()
	_, err = a.API.Sales.List(context.Background())
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.Equal(t, session.StatusAnonymous, a.Session.State().Status())
	cred, err := a.Store.Read()
	require.NoError(t, err)
	require.True(t, cred.Empty())
	require.Equal(t, []string{guard.RouteLogin}, navigated)
	require.Equal(t, guard.RouteLogin, a.LastNavigation())
	require.Equal(t, guard.Decision{Action: guard.ActionRedirect, Path: guard.RouteLogin}, a.Router.Navigate(guard.RouteSales))
	require.Equal(t, float64(1), testutil.ToFloat64(a.Metrics.AuthFailuresTotal))
}

func TestSellerRedirectedFromAdminPages(t *testing.T) {
	newBackend(t)
	a := newApp(t)
	startAndWait(t, a)
	require.NoError(t, a.Session.Login(context.Background(), users.Credentials{
		Email:    fakebackend.SellerEmail,
		Password: fakebackend.SellerPassword,
	}))

	require.Equal(t, guard.Decision{Action: guard.ActionRedirect, Path: guard.RouteDashboard}, a.Router.Navigate(guard.RouteReports))

	_, err := a.API.Reports.Ranking(context.Background(), time.Time{}, time.Time{})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	require.Equal(t, session.StatusAuthenticated, a.Session.State().Status(), "403 must not end the session")
}

func TestSQLiteSessionSurvivesRestart(t *testing.T) {
	backend := newBackend(t)
	t.Setenv("SALES_STORAGE_BACKEND", "sqlite")
	t.Setenv("SALES_DATA_FOLDER", t.TempDir())

	first, err := app.New(config.New(), app.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	startAndWait(t, first)
	require.NoError(t, first.Session.Login(context.Background(), users.Credentials{
		Email:    fakebackend.AdminEmail,
		Password: fakebackend.AdminPassword,
	}))
	require.NoError(t, first.Close())

	second := newApp(t)
	st := startAndWait(t, second)
	require.Equal(t, session.StatusAuthenticated, st.Status())
	require.Equal(t, fakebackend.AdminEmail, st.User.Email)
	require.Equal(t, 1, backend.Calls("GET /auth/me"))
}

func TestUnknownStorageBackend(t *testing.T) {
	t.Setenv("SALES_STORAGE_BACKEND", "etcd")
	_, err := app.New(config.New(), app.WithLogger(zerolog.Nop()))
	require.ErrorIs(t, err, apperrors.ErrUnsupported)
}

func TestRoutesFile(t *testing.T) {
	newBackend(t)
	file := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(file, []byte("routes:\n  - {path: /login, public: true}\n  - {path: /dashboard}\n  - {path: /ventas, role: admin}\n"), 0o600))
	t.Setenv("SALES_ROUTES_FILE", file)

	a := newApp(t)
	startAndWait(t, a)
	require.NoError(t, a.Session.Login(context.Background(), users.Credentials{
		Email:    fakebackend.SellerEmail,
		Password: fakebackend.SellerPassword,
	}))
	require.Equal(t, guard.Decision{Action: guard.ActionRedirect, Path: guard.RouteDashboard}, a.Router.Navigate(guard.RouteSales))
}

func TestBadRoutesFile(t *testing.T) {
	newBackend(t)
	t.Setenv("SALES_ROUTES_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := app.New(config.New(), app.WithLogger(zerolog.Nop()))
	require.Error(t, err)
}
