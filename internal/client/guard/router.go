package guard

import (
	"sort"
	"strings"

	"github.com/dmitrijs2005/scholarhub/internal/client/models"
	"github.com/dmitrijs2005/scholarhub/internal/client/session"
)

// Policy is the admission rule attached to a route.
type Policy int

const (
	Public Policy = iota
	Authenticated
	AdminOnly
)

// Router maps route prefixes to policies. The longest matching prefix wins;
// routes matching nothing are public.
type Router struct {
	prefixes []string
	policies map[string]Policy
}

// NewRouter returns the platform route table.
func NewRouter() *Router {
	r := &Router{policies: make(map[string]Policy)}
	r.Handle(RouteLogin, Public)
	r.Handle("/register", Public)
	r.Handle(RouteLanding, Authenticated)
	r.Handle("/profile", Authenticated)
	r.Handle("/journals", Authenticated)
	r.Handle("/events", Authenticated)
	r.Handle("/submissions", Authenticated)
	r.Handle("/communities", Authenticated)
	r.Handle("/admin", AdminOnly)
	return r
}

// Handle sets the policy for prefix and everything below it.
func (r *Router) Handle(prefix string, p Policy) {
	prefix = normalize(prefix)
	if _, ok := r.policies[prefix]; !ok {
		r.prefixes = append(r.prefixes, prefix)
		sort.Slice(r.prefixes, func(i, j int) bool { return len(r.prefixes[i]) > len(r.prefixes[j]) })
	}
	r.policies[prefix] = p
}

// PolicyFor returns the policy governing path.
func (r *Router) PolicyFor(path string) Policy {
	path = normalize(path)
	for _, prefix := range r.prefixes {
		if path == prefix || prefix == "/" || strings.HasPrefix(path, prefix+"/") {
			return r.policies[prefix]
		}
	}
	return Public
}

// Resolve applies the policy of path to s.
func (r *Router) Resolve(s session.State, path string) Decision {
	switch r.PolicyFor(path) {
	case Public:
		return Decision{Outcome: Allow}
	case Authenticated:
		return RequireAuthenticated(s)
	case AdminOnly:
		return RequireRole(s, models.RoleAdmin)
	default:
		return RequireAuthenticated(s)
	}
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(path, "/")
	return path
}
