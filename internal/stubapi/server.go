// Package stubapi is an in-memory implementation of the platform endpoints
// the session core talks to. It backs the integration tests and the
// cmd/stubapi development server; it is not a production server.
package stubapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/scholarhub/internal/client/models"
)

var ErrEmailTaken = errors.New("email already registered")

type account struct {
	user models.UserSummary
	hash []byte
}

type Server struct {
	secret []byte
	ttl    time.Duration

	mu      sync.Mutex
	byEmail map[string]*account
	byID    map[string]*account
	revoked map[string]bool
	calls   map[string]int

	validate *validator.Validate
	mux      *http.ServeMux
}

// New returns a server signing HS256 tokens with secret, valid for ttl.
func New(secret []byte, ttl time.Duration) *Server {
	s := &Server{
		secret:  secret,
		ttl:     ttl,
		byEmail: make(map[string]*account),
		byID:    make(map[string]*account),
		revoked: make(map[string]bool),
		calls:   make(map[string]int),

		validate: newValidator(),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/auth/login", s.login)
	s.mux.HandleFunc("POST /api/auth/register", s.register)
	s.mux.HandleFunc("GET /api/auth/verify", s.verify)
	s.mux.HandleFunc("GET /api/users/me", s.authenticated(s.me))
	s.mux.HandleFunc("GET /api/journals", s.authenticated(s.journals))
	s.mux.HandleFunc("GET /api/admin/users", s.authenticated(s.adminUsers))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls[r.Method+" "+r.URL.Path]++
	s.mu.Unlock()

	s.mux.ServeHTTP(w, r)
}

// AddUser creates an account. An empty ID is replaced with a fresh uuid.
func (s *Server) AddUser(u models.UserSummary, password string) (models.UserSummary, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return models.UserSummary{}, err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if !u.Role.IsValid() {
		u.Role = models.RoleUser
	}
	email := strings.ToLower(u.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return models.UserSummary{}, ErrEmailTaken
	}
	a := &account{user: u, hash: hash}
	s.byEmail[email] = a
	s.byID[u.ID] = a
	return u, nil
}

// UpdateUser applies fn to the stored profile of the user with id.
func (s *Server) UpdateUser(id string, fn func(*models.UserSummary)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if ok {
		fn(&a.user)
	}
	return ok
}

// Revoke makes every later request carrying token fail authentication.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

// Calls returns how many requests hit "METHOD /path".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func bearer(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, prefix) || len(h) == len(prefix) {
		return "", false
	}
	return h[len(prefix):], true
}

// lookup resolves the bearer token of r to its account. revoked reports a
// well-formed token the server no longer accepts.
func (s *Server) lookup(r *http.Request) (a *account, revoked bool, ok bool) {
	token, ok := bearer(r)
	if !ok {
		return nil, false, false
	}
	c, err := parseToken(token, s.secret)
	if err != nil {
		return nil, false, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.byID[c.UserID]
	if !found {
		return nil, false, false
	}
	if s.revoked[token] {
		return a, true, false
	}
	return a, false, true
}

func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, models.UserSummary)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _, ok := s.lookup(r)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}
		s.mu.Lock()
		u := a.user
		s.mu.Unlock()
		next(w, r, u)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	a, ok := s.byEmail[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(a.hash, []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := issueToken(a.user.ID, s.secret, s.ttl)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	s.mu.Lock()
	u := a.user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": u})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed registration data")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	u := models.UserSummary{
		Name:      req.Name,
		Email:     req.Email,
		Role:      models.RoleUser,
		Phone:     req.Phone,
		Province:  req.Province,
		City:      req.City,
		BirthDate: req.BirthDate,
		Gender:    req.Gender,
	}
	if _, err := s.AddUser(u, req.Password); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			writeMessage(w, http.StatusConflict, "Email is already registered")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	writeMessage(w, http.StatusCreated, "Registration successful")
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	_, revoked, ok := s.lookup(r)
	switch {
	case ok:
		writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
	case revoked:
		writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
	default:
		writeMessage(w, http.StatusUnauthorized, "Token is invalid or expired")
	}
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, u models.UserSummary) {
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) journals(w http.ResponseWriter, _ *http.Request, _ models.UserSummary) {
	writeJSON(w, http.StatusOK, []map[string]string{
		{"id": "j1", "title": "Journal of Applied Examples"},
		{"id": "j2", "title": "Proceedings of Sample Events"},
	})
}

func (s *Server) adminUsers(w http.ResponseWriter, _ *http.Request, u models.UserSummary) {
	if u.Role != models.RoleAdmin {
		writeMessage(w, http.StatusForbidden, "Administrator role required")
		return
	}

	s.mu.Lock()
	users := make([]models.UserSummary, 0, len(s.byID))
	for _, a := range s.byID {
		users = append(users, a.user)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, users)
}
