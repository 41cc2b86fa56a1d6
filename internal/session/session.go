// Package session holds the signed-in user's session: the bearer token and
// profile, persisted between runs, plus the guard protecting screens and
// commands that need a signed-in user.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/smartwaste/pickup/internal/storage"
	"github.com/smartwaste/pickup/pkg/client"
	"github.com/smartwaste/pickup/pkg/domain"
)

// Storage keys. Both are absent when logged out.
const (
	TokenKey = "accessToken"
	UserKey  = "user"
)

// Session is the current token and profile. The user may be unknown even
// with a token, when the profile fetch after login failed.
type Session struct {
	User  domain.User
	Token string
}

// Authenticated reports whether a token is held.
func (s Session) Authenticated() bool { return s.Token != "" }

// HasUser reports whether a profile is held.
func (s Session) HasUser() bool { return s.User != nil }

// Persister loads and saves a whole session.
type Persister interface {
	Load() (Session, error)
	Save(Session) error
}

// KVPersister keeps the session in a key-value store under TokenKey and
// UserKey. Both keys are written in one Apply.
type KVPersister struct {
	KV  storage.KV
	Log *zap.Logger
}

// NewKVPersister returns a persister over kv.
func NewKVPersister(kv storage.KV, log *zap.Logger) *KVPersister {
	if log == nil {
		log = zap.NewNop()
	}
	return &KVPersister{KV: kv, Log: log}
}

// Load reads the session. A stored user that is not a JSON object is
// dropped rather than reported.
func (p *KVPersister) Load() (Session, error) {
	var s Session
	if tok, ok := p.KV.Get(TokenKey); ok {
		s.Token = tok
	}
	raw, ok := p.KV.Get(UserKey)
	if !ok || raw == "" {
		return s, nil
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		p.Log.Warn("ignoring unreadable stored user", zap.Error(err))
		return s, nil
	}
	s.User = u
	return s, nil
}

// Token reads only the persisted token. It backs the client's request hook.
func (p *KVPersister) Token() string {
	tok, _ := p.KV.Get(TokenKey)
	return tok
}

// Save writes both keys, removing those the session does not hold.
func (p *KVPersister) Save(s Session) error {
	ops := make([]storage.Op, 0, 2)
	if s.Token != "" {
		ops = append(ops, storage.Set(TokenKey, s.Token))
	} else {
		ops = append(ops, storage.Remove(TokenKey))
	}
	if s.User != nil {
		raw, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("session.Save: marshal user: %w", err)
		}
		ops = append(ops, storage.Set(UserKey, string(raw)))
	} else {
		ops = append(ops, storage.Remove(UserKey))
	}
	if err := p.KV.Apply(ops...); err != nil {
		return fmt.Errorf("session.Save: %w", err)
	}
	return nil
}

// AuthAPI is the part of the API client the store drives.
type AuthAPI interface {
	Login(ctx context.Context, creds client.Credentials) (*client.LoginResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) (json.RawMessage, error)
	Me(ctx context.Context) (domain.User, error)
	SetAuthToken(token string)
}

// Store is the process-wide session. It is safe for concurrent use.
type Store struct {
	persist Persister
	api     AuthAPI
	log     *zap.Logger

	mu  sync.RWMutex
	cur Session
}

// Open creates the store, loading the persisted session once. A load error
// leaves the store empty and is returned for reporting only.
func Open(p Persister, api AuthAPI, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{persist: p, api: api, log: log}
	cur, err := p.Load()
	if err != nil {
		return s, fmt.Errorf("session.Open: %w", err)
	}
	s.cur = cur
	if cur.Token != "" && api != nil {
		api.SetAuthToken(cur.Token)
	}
	return s, nil
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *Store) set(next Session) error {
	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	return s.persist.Save(next)
}

// Login authenticates. When the response carries an access token it is
// stored and installed as the default header before the profile is fetched.
// A failed profile fetch is logged and leaves the user unset; the token
// stays. The response is returned as received either way.
func (s *Store) Login(ctx context.Context, creds client.Credentials) (*client.LoginResponse, error) {
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if resp.Access == "" {
		return resp, nil
	}

	if err := s.set(Session{Token: resp.Access}); err != nil {
		s.log.Warn("persist token failed", zap.Error(err))
	}
	s.api.SetAuthToken(resp.Access)

	me, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn("failed to fetch user profile after login", zap.Error(err))
		return resp, nil
	}
	if err := s.set(Session{User: me, Token: resp.Access}); err != nil {
		s.log.Warn("persist user failed", zap.Error(err))
	}
	return resp, nil
}

// Register forwards to the registration endpoint without touching the session.
func (s *Store) Register(ctx context.Context, req client.RegisterRequest) (json.RawMessage, error) {
	return s.api.Register(ctx, req)
}

// Logout clears the session in memory and storage. It never calls the server.
func (s *Store) Logout() error {
	err := s.set(Session{})
	if s.api != nil {
		s.api.SetAuthToken("")
	}
	return err
}

// UpdateUser replaces the stored profile.
func (s *Store) UpdateUser(u domain.User) error {
	s.mu.Lock()
	s.cur.User = u
	next := s.cur
	s.mu.Unlock()
	return s.persist.Save(next)
}

// TokenExpiry reads the exp claim of the token without verifying it. The
// result is informational; the server remains the judge of validity.
func (s *Store) TokenExpiry() (time.Time, bool) {
	tok := s.Current().Token
	if tok == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
