// Package fakebackend is an in-process stand-in for the sales REST backend.
// It speaks the same wire format (form login, bearer JWTs, JSON "detail"
// errors) and exposes hooks to revoke tokens or slow down /auth/me so client
// behaviour around 401s and session resolution can be exercised.
package fakebackend

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-sales-client/api"
	"github.com/jrsteele09/go-sales-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLoginDetail = "Email o contraseña incorrectos"
	DefaultSecret      = "fake-backend-secret"
	DefaultTokenTTL    = 30 * time.Minute
)

// Seeded accounts
const (
	AdminEmail     = "admin@ventas.com"
	AdminPassword  = "admin123"
	SellerEmail    = "vendedor@ventas.com"
	SellerPassword = "vendedor123"
)

type account struct {
	user         users.User
	passwordHash string
}

type Backend struct {
	mux    *http.ServeMux
	routes []string
	logger zerolog.Logger
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	// URL is set once the backend is served over httptest
	URL string

	mu            sync.RWMutex
	accounts      map[string]*account
	nextUserID    int
	revoked       map[string]bool
	issued        []string
	loginDetail   string
	meDelay       time.Duration
	meStatus      int
	meBody        []byte
	calls         map[string]int
	lastHeaders   map[string]http.Header
	products      map[int]*api.Product
	nextProductID int
	sales         []api.Sale
	notifications []api.Notification
}

type Option func(*Backend)

func WithLogger(logger zerolog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

func WithSecret(secret string) Option {
	return func(b *Backend) {
		b.secret = []byte(secret)
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.ttl = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

// New builds a backend seeded with an admin, a seller and a few products.
func New(opts ...Option) *Backend {
	b := &Backend{
		mux:         http.NewServeMux(),
		logger:      log.Logger,
		secret:      []byte(DefaultSecret),
		ttl:         DefaultTokenTTL,
		now:         time.Now,
		accounts:    make(map[string]*account),
		revoked:     make(map[string]bool),
		loginDetail: DefaultLoginDetail,
		calls:       make(map[string]int),
		lastHeaders: make(map[string]http.Header),
		products:    make(map[int]*api.Product),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.seed()
	b.initRoutes()
	return b
}

// Serve starts b on a local httptest server that is closed when tb finishes.
func Serve(tb testing.TB, opts ...Option) *Backend {
	tb.Helper()
	b := New(opts...)
	srv := httptest.NewServer(b)
	tb.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mux.ServeHTTP(w, r)
}

// Routes lists every registered pattern
func (b *Backend) Routes() []string {
	out := append([]string(nil), b.routes...)
	sort.Strings(out)
	return out
}

func (b *Backend) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	b.routes = append(b.routes, pattern)
	b.mux.HandleFunc(pattern, b.record(pattern, handler))
}

// Calls returns how many requests matched pattern, e.g. "GET /auth/me"
func (b *Backend) Calls(pattern string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.calls[pattern]
}

// LastHeaders returns the headers of the most recent request matching pattern
func (b *Backend) LastHeaders(pattern string) http.Header {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastHeaders[pattern]
}

// SetLoginDetail changes the detail message of a rejected login
func (b *Backend) SetLoginDetail(detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginDetail = detail
}

// SetMeDelay holds /auth/me responses for d or until the client gives up
func (b *Backend) SetMeDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.meDelay = d
}

// SetMeStatus forces /auth/me to answer with status. Zero restores normal handling.
func (b *Backend) SetMeStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.meStatus = status
}

// SetMeBody makes /auth/me answer 200 with body as is. Nil restores normal handling.
func (b *Backend) SetMeBody(body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.meBody = body
}

// Revoke makes every later request bearing accessToken fail with 401
func (b *Backend) Revoke(accessToken string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[accessToken] = true
}

// RevokeAll invalidates every token issued so far
func (b *Backend) RevokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.issued {
		b.revoked[t] = true
	}
}

// AddUser registers an account and returns the stored user
func (b *Backend) AddUser(name, email, password string, role users.RoleType, commission *float64) (*users.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextUserID++
	acc := &account{
		user: users.User{
			ID:                b.nextUserID,
			Name:              name,
			Email:             email,
			Role:              role,
			Active:            true,
			CommissionPercent: commission,
		},
		passwordHash: hash,
	}
	b.accounts[email] = acc
	u := acc.user
	return &u, nil
}

// User returns the seeded or added account for email
func (b *Backend) User(email string) (*users.User, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc, ok := b.accounts[email]
	if !ok {
		return nil, false
	}
	u := acc.user
	return &u, true
}

// Deactivate blocks login and token use for email
func (b *Backend) Deactivate(email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if acc, ok := b.accounts[email]; ok {
		acc.user.Active = false
	}
}

func (b *Backend) seed() {
	commission := 5.0
	if _, err := b.AddUser("Administrador", AdminEmail, AdminPassword, users.RoleAdmin, nil); err != nil {
		b.logger.Fatal().Err(err).Msg("seeding admin")
	}
	if _, err := b.AddUser("Vendedor Demo", SellerEmail, SellerPassword, users.RoleSeller, &commission); err != nil {
		b.logger.Fatal().Err(err).Msg("seeding seller")
	}

	created := b.now().UTC().Format(time.RFC3339)
	for _, p := range []api.Product{
		{Code: "P-001", Name: "Teclado", SalePrice: 45, PurchasePrice: 30, Stock: 20, MinStock: 5},
		{Code: "P-002", Name: "Ratón", SalePrice: 20, PurchasePrice: 12, Stock: 3, MinStock: 5},
		{Code: "P-003", Name: "Monitor", SalePrice: 180, PurchasePrice: 140, Stock: 8, MinStock: 2},
	} {
		b.nextProductID++
		p.ID = b.nextProductID
		p.Active = true
		p.CreatedAt = created
		b.products[p.ID] = &p
	}
}
