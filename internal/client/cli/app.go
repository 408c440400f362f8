package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/dmitrijs2005/scholarhub/internal/client/api"
	"github.com/dmitrijs2005/scholarhub/internal/client/config"
	"github.com/dmitrijs2005/scholarhub/internal/client/guard"
	"github.com/dmitrijs2005/scholarhub/internal/client/session"
	"github.com/dmitrijs2005/scholarhub/internal/client/store"
	"github.com/dmitrijs2005/scholarhub/internal/logging"
)

// sessionService is the part of session.Manager the client drives.
type sessionService interface {
	State() session.State
	Subscribe(fn func(session.State)) (cancel func())
	Bootstrap(ctx context.Context) (<-chan struct{}, error)
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, req api.RegisterRequest) (string, error)
	Logout(ctx context.Context) error
	ReloadProfile(ctx context.Context) error
}

type fetcher interface {
	Fetch(ctx context.Context, path string) (json.RawMessage, error)
}

// App is the terminal client. It implements api.Navigator.
type App struct {
	log     logging.Logger
	session sessionService
	api     fetcher
	router  *guard.Router
	reader  *bufio.Reader
	out     io.Writer
	closeFn func() error

	mu sync.Mutex
	// route is the current location; pending is a location held until the
	// session leaves StatusRestoring.
	route   string
	pending string
	lastSeq uint64
}

// NewApp opens the credential store for the configured origin and wires the
// request pipeline and the session manager around it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return build(ctx, c, os.Stdin, os.Stdout)
}

func build(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel, c.LogFormat)

	st, err := store.Open(ctx, c.DataDir, c.APIBaseURL, log)
	if err != nil {
		log.Error(ctx, "error opening credential store", "error", err)
		return nil, err
	}

	tr := api.NewTransport(http.DefaultTransport, nil, log)
	client, err := api.NewClient(c.APIBaseURL, c.RequestTimeout, tr, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	// the manager reads the store for every request and owns its repair
	mgr := session.NewManager(st, client, log, session.WithStrictRestore(c.StrictRestore))
	tr.SetCredentials(mgr)
	tr.SetInvalidator(mgr)

	app := newApp(mgr, client, log, in, out)
	app.closeFn = st.Close
	tr.SetNavigator(app, guard.RouteLogin)

	return app, nil
}

func newApp(s sessionService, f fetcher, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		log:     log,
		session: s,
		api:     f,
		router:  guard.NewRouter(),
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run subscribes to the session, restores it from the store and starts the
// REPL. It blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	cancel := a.session.Subscribe(a.onState)
	defer cancel()

	a.open(guard.RouteLanding)

	done, err := a.session.Bootstrap(ctx)
	if done == nil {
		return err
	}
	if err != nil {
		// the session is anonymous and the store will be overwritten on login
		a.println("Stored session could not be read: " + err.Error())
	}

	a.println("Welcome to scholarhub CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)

	// Let a running verification finish before the store is closed.
	select {
	case <-done:
	case <-ctx.Done():
	}
	return nil
}

func (a *App) close() {
	if a.closeFn == nil {
		return
	}
	if err := a.closeFn(); err != nil {
		a.log.Error(context.Background(), "error closing credential store", "error", err)
	}
}

// Current returns the current route.
func (a *App) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

// Navigate moves to route unconditionally. The request pipeline calls it to
// send the user to the login route once the server rejected the session.
func (a *App) Navigate(route string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = ""
	a.moveLocked(route)
}

// open runs route through the guards against the newest known state.
func (a *App) open(route string) guard.Decision {
	s := a.session.State()

	a.mu.Lock()
	defer a.mu.Unlock()
	if s.Seq < a.lastSeq {
		// a newer snapshot was delivered meanwhile
		s = a.session.State()
	}
	d := a.router.Resolve(s, route)
	a.applyLocked(route, d)
	return d
}

// onState renders a transition and re-runs the guards for the route the user
// is on, or is waiting for. Snapshots arrive in order.
func (a *App) onState(s session.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s.Seq <= a.lastSeq && a.lastSeq != 0 {
		return
	}
	a.lastSeq = s.Seq
	a.renderLocked(s)

	target := a.route
	if a.pending != "" {
		target = a.pending
	}
	if target == "" {
		return
	}
	a.applyLocked(target, a.router.Resolve(s, target))
}

func (a *App) applyLocked(target string, d guard.Decision) {
	switch d.Outcome {
	case guard.Allow:
		a.pending = ""
		a.moveLocked(target)
	case guard.Hold:
		if a.pending != target {
			a.pending = target
			a.printlnLocked("Restoring session, " + target + " will open when it is ready")
		}
	case guard.Redirect:
		a.pending = ""
		a.moveLocked(d.Target)
	}
}

func (a *App) moveLocked(route string) {
	if a.route == route {
		return
	}
	a.route = route
	a.printlnLocked("-> " + route)
}

func (a *App) renderLocked(s session.State) {
	switch s.Status {
	case session.StatusAuthenticated:
		if s.User != nil {
			a.printlnLocked(fmt.Sprintf("Signed in as %s (%s)", s.User.Email, s.User.Role))
		}
	case session.StatusAnonymous:
		a.printlnLocked("Signed out")
	}
	if s.PendingError != nil {
		a.printlnLocked("! " + api.UserMessage(s.PendingError))
	}
}

func (a *App) getStatus() string {
	s := a.session.State()
	route := a.Current()

	switch s.Status {
	case session.StatusRestoring:
		return "restoring " + route
	case session.StatusAuthenticated:
		if s.User != nil {
			return s.User.Email + " " + route
		}
	}
	return "anonymous " + route
}

func (a *App) println(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.printlnLocked(msg)
}

func (a *App) printlnLocked(msg string) {
	fmt.Fprintln(a.out, msg)
}
