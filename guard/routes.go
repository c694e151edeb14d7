package guard

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/jrsteele09/go-sales-client/session"
	"github.com/jrsteele09/go-sales-client/users"
	"gopkg.in/yaml.v3"
)

// Application pages
const (
	RouteRoot      = "/"
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
	RouteProducts  = "/productos"
	RouteSales     = "/ventas"
	RouteReports   = "/reportes"
)

// LoadingText is shown while the session is still resolving
const LoadingText = "Cargando..."

type Route struct {
	Path   string         `yaml:"path"`
	Role   users.RoleType `yaml:"role,omitempty"`
	Public bool           `yaml:"public,omitempty"`
}

// Table maps page paths to their access rules
type Table struct {
	routes map[string]Route
}

func DefaultRoutes() *Table {
	t, err := NewTable([]Route{
		{Path: RouteLogin, Public: true},
		{Path: RouteDashboard},
		{Path: RouteSales},
		{Path: RouteProducts, Role: users.RoleAdmin},
		{Path: RouteReports, Role: users.RoleAdmin},
	})
	if err != nil {
		panic(err)
	}
	return t
}

func NewTable(routes []Route) (*Table, error) {
	t := &Table{routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("route %q: path must start with /", r.Path)
		}
		r.Path = cleanPath(r.Path)
		if r.Path == RouteRoot {
			return nil, fmt.Errorf("route %q: the root path always redirects to %s", r.Path, RouteDashboard)
		}
		if r.Role != "" && !r.Role.Valid() {
			return nil, fmt.Errorf("route %q: unknown role %q", r.Path, r.Role)
		}
		if r.Public && r.Role != "" {
			return nil, fmt.Errorf("route %q: a public route cannot require a role", r.Path)
		}
		if _, dup := t.routes[r.Path]; dup {
			return nil, fmt.Errorf("route %q: declared twice", r.Path)
		}
		t.routes[r.Path] = r
	}
	if login, ok := t.routes[RouteLogin]; !ok || !login.Public {
		return nil, fmt.Errorf("route table must declare %s as public", RouteLogin)
	}
	if _, ok := t.routes[RouteDashboard]; !ok {
		return nil, fmt.Errorf("route table must declare %s", RouteDashboard)
	}
	return t, nil
}

// LoadRoutes reads a table from YAML:
//
//	routes:
//	  - path: /login
//	    public: true
//	  - path: /productos
//	    role: admin
func LoadRoutes(r io.Reader) (*Table, error) {
	var doc struct {
		Routes []Route `yaml:"routes"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("[LoadRoutes] decode: %w", err)
	}
	return NewTable(doc.Routes)
}

func (t *Table) Lookup(p string) (Route, bool) {
	r, ok := t.routes[cleanPath(p)]
	return r, ok
}

// Routes returns every route sorted by path
func (t *Table) Routes() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func cleanPath(p string) string {
	if p == "" {
		return RouteRoot
	}
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}

// StateSource supplies the session state at the moment of navigation
type StateSource interface {
	State() session.State
}

// Router evaluates navigations against a route table, reading the session
// state afresh on every call
type Router struct {
	table    *Table
	sessions StateSource
}

func NewRouter(table *Table, sessions StateSource) *Router {
	if table == nil {
		table = DefaultRoutes()
	}
	return &Router{table: table, sessions: sessions}
}

func (r *Router) Table() *Table {
	return r.table
}

// Navigate decides one navigation step. The root and unknown paths redirect
// to the dashboard; public pages always render.
func (r *Router) Navigate(p string) Decision {
	route, ok := r.table.Lookup(p)
	if !ok {
		return redirect(RouteDashboard)
	}
	if route.Public {
		return render(route.Path)
	}
	return Evaluate(r.sessions.State(), route.Path, route.Role)
}

// Follow navigates to p and follows redirects until a page renders or the
// session is still loading
func (r *Router) Follow(p string) (Decision, []string) {
	visited := []string{cleanPath(p)}
	d := r.Navigate(p)
	for d.Action == ActionRedirect && len(visited) <= len(r.table.routes)+1 {
		visited = append(visited, d.Path)
		d = r.Navigate(d.Path)
	}
	return d, visited
}
