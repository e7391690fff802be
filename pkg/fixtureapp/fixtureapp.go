// Package fixtureapp serves a small login application used as the target
// for end-to-end tests. It mimics a storefront login screen with
// client-side validation and a delayed error banner, so tests exercise
// real waiting rather than instant DOM state.
package fixtureapp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	// Credentials accepted by the login endpoint.
	ValidUser     = "standard_user"
	LockedUser    = "locked_out_user"
	ValidPassword = "secret_sauce"

	// Error texts surfaced in the h3[data-test=error] banner.
	ErrUsernameRequired = "Epic sadface: Username is required"
	ErrPasswordRequired = "Epic sadface: Password is required"
	ErrLockedOut        = "Epic sadface: Sorry, this user has been locked out."
	ErrBadCredentials   = "Epic sadface: Username and password do not match any user in this service"
)

// App is the fixture application.
type App struct {
	log         *zap.Logger
	revealDelay time.Duration
	upgrader    websocket.Upgrader
}

// Option customizes the App.
type Option func(*App)

// WithRevealDelay sets how long the login page waits before showing the
// error banner. Gives wait-based tests something real to wait on.
func WithRevealDelay(d time.Duration) Option {
	return func(a *App) { a.revealDelay = d }
}

// New builds the fixture application.
func New(log *zap.Logger, opts ...Option) *App {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		log:         log,
		revealDelay: 150 * time.Millisecond,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns the full HTTP handler, CORS included.
func (a *App) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")

	router.HandleFunc("/", a.serveLoginPage).Methods("GET")
	router.HandleFunc("/index.html", a.serveLoginPage).Methods("GET")
	router.HandleFunc("/inventory.html", a.serveInventoryPage).Methods("GET")
	router.HandleFunc("/slow", a.serveSlowPage).Methods("GET")
	router.HandleFunc("/dialog", a.serveDialogPage).Methods("GET")
	router.HandleFunc("/frame", a.serveFramePage).Methods("GET")
	router.HandleFunc("/drag", a.serveDragPage).Methods("GET")
	router.HandleFunc("/api/login", a.handleLogin).Methods("POST")
	router.HandleFunc("/ws", a.handleWebSocket).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(router)
}

// Serve runs the application until ctx is canceled.
func (a *App) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("fixture app listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Validate applies the login rules and returns the banner text for a
// rejected attempt, or empty for success.
func Validate(username, password string) string {
	switch {
	case strings.TrimSpace(username) == "":
		return ErrUsernameRequired
	case strings.TrimSpace(password) == "":
		return ErrPasswordRequired
	case username == LockedUser && password == ValidPassword:
		return ErrLockedOut
	case username == ValidUser && password == ValidPassword:
		return ""
	default:
		return ErrBadCredentials
	}
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if msg := Validate(req.Username, req.Password); msg != "" {
		a.log.Info("login rejected", zap.String("username", req.Username), zap.String("reason", msg))
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(loginResponse{Error: msg})
		return
	}

	a.log.Info("login accepted", zap.String("username", req.Username))
	json.NewEncoder(w).Encode(loginResponse{OK: true})
}

// handleWebSocket pushes a short burst of status events to the client.
// The slow page uses it to reveal content once the feed completes.
func (a *App) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for i := 1; i <= 3; i++ {
		msg := map[string]any{"event": "tick", "seq": i}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
	conn.WriteJSON(map[string]any{"event": "done"})
}
