// Package firebase is a REST client for the Firebase Identity Toolkit API.
// It keeps the signed-in user in memory and reports every change to the
// registered listeners, in order.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
)

const (
	DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"
	defaultTimeout  = 10 * time.Second
)

// Config holds the web app settings of the Firebase project.
type Config struct {
	APIKey     string
	Endpoint   string
	AuthDomain string
	ProjectID  string
	AppID      string
	HTTPClient *http.Client
}

// Client implements ports.IdentityProvider.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
	log      zerolog.Logger

	mu        sync.Mutex
	current   *session
	listeners map[int]*listener
	next      int
}

var _ ports.IdentityProvider = (*Client)(nil)

type session struct {
	user         domain.UserIdentity
	idToken      string
	refreshToken string
}

// New validates cfg and builds a client. It performs no network I/O.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("firebase: api key: %w", domain.ErrConfigurationInvalid)
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("firebase: endpoint %q: %w", endpoint, domain.ErrConfigurationInvalid)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:    cfg.APIKey,
		endpoint:  strings.TrimRight(endpoint, "/"),
		http:      hc,
		log:       log.With().Str("project", cfg.ProjectID).Logger(),
		listeners: make(map[int]*listener),
	}, nil
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type profileRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.UserIdentity, error) {
	var resp accountResponse
	if err := c.call(ctx, "accounts:signInWithPassword", passwordRequest{email, password, true}, &resp); err != nil {
		return nil, err
	}
	return c.signedIn(resp, ""), nil
}

func (c *Client) CreateUser(ctx context.Context, email, password string) (*domain.UserIdentity, error) {
	var resp accountResponse
	if err := c.call(ctx, "accounts:signUp", passwordRequest{email, password, true}, &resp); err != nil {
		return nil, err
	}
	return c.signedIn(resp, ""), nil
}

// UpdateProfile sets the display name of the signed-in user.
func (c *Client) UpdateProfile(ctx context.Context, displayName string) (*domain.UserIdentity, error) {
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()
	if cur == nil {
		return nil, errors.New("firebase: update profile: no signed-in user")
	}

	var resp accountResponse
	if err := c.call(ctx, "accounts:update", profileRequest{cur.idToken, displayName, true}, &resp); err != nil {
		return nil, err
	}
	if resp.IDToken == "" {
		resp.IDToken = cur.idToken
		resp.RefreshToken = cur.refreshToken
	}
	if resp.LocalID == "" {
		resp.LocalID = cur.user.UID
	}
	return c.signedIn(resp, displayName), nil
}

// SignOut drops the local session. The provider keeps no server-side state.
func (c *Client) SignOut(context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.broadcastLocked(nil)
	c.mu.Unlock()
	return nil
}

// OnAuthStateChanged registers fn. The current user is delivered first,
// asynchronously, followed by every later change in order.
func (c *Client) OnAuthStateChanged(fn ports.ChangeFunc) func() {
	l := newListener(fn)

	c.mu.Lock()
	id := c.next
	c.next++
	c.listeners[id] = l
	l.push(c.currentUserLocked())
	c.mu.Unlock()

	go l.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
			l.stop()
		})
	}
}

// Close stops all listeners.
func (c *Client) Close() {
	c.mu.Lock()
	ls := c.listeners
	c.listeners = make(map[int]*listener)
	c.mu.Unlock()
	for _, l := range ls {
		l.stop()
	}
}

func (c *Client) signedIn(resp accountResponse, displayName string) *domain.UserIdentity {
	user := domain.UserIdentity{
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
	}
	if displayName != "" {
		user.DisplayName = displayName
	}
	if claims, err := parseIDToken(resp.IDToken); err != nil {
		c.log.Warn().Err(err).Msg("id token claims unreadable")
	} else {
		user.EmailVerified = claims.EmailVerified
		if user.UID == "" {
			user.UID = claims.UserID
		}
		if user.Email == "" {
			user.Email = claims.Email
		}
		if user.DisplayName == "" {
			user.DisplayName = claims.Name
		}
	}

	c.mu.Lock()
	c.current = &session{user: user, idToken: resp.IDToken, refreshToken: resp.RefreshToken}
	c.broadcastLocked(&user)
	c.mu.Unlock()

	return user.Clone()
}

func (c *Client) currentUserLocked() *domain.UserIdentity {
	if c.current == nil {
		return nil
	}
	return c.current.user.Clone()
}

func (c *Client) broadcastLocked(user *domain.UserIdentity) {
	for _, l := range c.listeners {
		l.push(user.Clone())
	}
}

func (c *Client) call(ctx context.Context, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("firebase: encode %s: %w", method, err)
	}

	u := c.endpoint + "/" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("firebase: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("firebase: %s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Error.Message == "" {
			return fmt.Errorf("firebase: %s returned %s", method, resp.Status)
		}
		return newAPIError(resp.StatusCode, env)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("firebase: decode %s response: %w", method, err)
	}
	return nil
}
