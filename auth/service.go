// Package auth tracks who is signed in to the portal and what their role
// allows. It sits on top of the session client.
package auth

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"sync"

	"github.com/jrsteele09/go-course-client/catalog"
	cerrors "github.com/jrsteele09/go-course-client/internal/errors"
	"github.com/jrsteele09/go-course-client/session"
	"github.com/jrsteele09/go-course-client/tokens"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	RouteMe       = "/auth/me"
	RouteRegister = "/auth/register"
)

// Session is the session client surface the service drives.
type Session interface {
	Init(ctx context.Context) error
	Teardown(ctx context.Context) error
	Login(ctx context.Context, email, password string) (tokens.Pair, error)
	Tokens() tokens.Pair
	DoJSON(ctx context.Context, req session.Request, out any) error
}

// User is the /auth/me profile. Raw keeps every field the server sent.
type User struct {
	ID       catalog.ID
	Email    string
	FullName string
	Raw      map[string]any
}

// Principal is the signed-in user with their resolved role.
type Principal struct {
	User User
	Role Role
}

type Service struct {
	session Session
	log     zerolog.Logger

	mu      sync.RWMutex
	current *Principal
}

func NewService(s Session, logger zerolog.Logger) *Service {
	return &Service{
		session: s,
		log:     logger.With().Str("component", "auth").Logger(),
	}
}

// Bootstrap restores the persisted session on start-up. Without a stored
// access token, or when the profile cannot be read, the session is cleared and
// the user is anonymous (nil principal).
func (s *Service) Bootstrap(ctx context.Context) (*Principal, error) {
	if err := s.session.Init(ctx); err != nil {
		s.log.Warn().Err(err).Msg("could not read stored session")
		return nil, s.reset(ctx)
	}
	if s.session.Tokens().AccessToken == "" {
		return nil, s.reset(ctx)
	}

	p, err := s.fetchPrincipal(ctx)
	if err != nil {
		s.log.Info().Err(err).Msg("stored session rejected, signing out")
		return nil, s.reset(ctx)
	}
	s.setCurrent(p)
	return p, nil
}

// Login authenticates and loads the user's profile.
func (s *Service) Login(ctx context.Context, email, password string) (*Principal, error) {
	if _, err := s.session.Login(ctx, email, password); err != nil {
		return nil, errors.Wrap(err, "Service.Login")
	}
	p, err := s.fetchPrincipal(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Service.Login profile")
	}
	s.setCurrent(p)
	s.log.Info().Str("email", p.User.Email).Str("role", string(p.Role)).Msg("signed in")
	return p, nil
}

// Register creates a student account unless another role code is given. With
// autoLogin the new account is signed in and its principal returned.
func (s *Service) Register(ctx context.Context, reg Registration, autoLogin bool) (*Principal, error) {
	if reg.RoleCode == RoleNone {
		reg.RoleCode = RoleStudent
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	req := session.Request{Method: http.MethodPost, Path: RouteRegister, Body: reg}
	if err := s.session.DoJSON(ctx, req, nil); err != nil {
		return nil, errors.Wrap(err, "Service.Register")
	}
	if !autoLogin {
		return nil, nil
	}
	return s.Login(ctx, reg.Email, reg.Password)
}

// Logout clears the session locally. The API has no logout call.
func (s *Service) Logout(ctx context.Context) error {
	return s.reset(ctx)
}

// Current returns the signed-in principal, or nil.
func (s *Service) Current() *Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// HasRole reports whether the signed-in user holds one of roles.
func (s *Service) HasRole(roles ...Role) bool {
	p := s.Current()
	if p == nil || p.Role == RoleNone {
		return false
	}
	return slices.ContainsFunc(roles, func(r Role) bool {
		return NormalizeRole(string(r)) == p.Role
	})
}

// Authorize guards a role-restricted action. No user is ErrUnauthenticated
// (send them to login); the wrong role is ErrForbidden. No roles means any
// signed-in user.
func (s *Service) Authorize(roles ...Role) error {
	p := s.Current()
	if p == nil {
		return cerrors.ErrUnauthenticated
	}
	if len(roles) > 0 && !s.HasRole(roles...) {
		return errors.Wrapf(cerrors.ErrForbidden, "role %q", p.Role)
	}
	return nil
}

func (s *Service) fetchPrincipal(ctx context.Context) (*Principal, error) {
	var me map[string]any
	if err := s.session.DoJSON(ctx, session.Request{Method: http.MethodGet, Path: RouteMe}, &me); err != nil {
		return nil, err
	}

	user := User{ID: idValue(me["id"]), Raw: me}
	user.Email, _ = me["email"].(string)
	user.FullName, _ = me["fullName"].(string)

	return &Principal{
		User: user,
		Role: ResolveRole(me, s.session.Tokens().AccessToken),
	}, nil
}

func idValue(v any) catalog.ID {
	switch id := v.(type) {
	case string:
		return catalog.ID(id)
	case float64:
		return catalog.ID(strconv.FormatFloat(id, 'f', -1, 64))
	default:
		return ""
	}
}

func (s *Service) setCurrent(p *Principal) {
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
}

func (s *Service) reset(ctx context.Context) error {
	s.setCurrent(nil)
	if err := s.session.Teardown(ctx); err != nil {
		return errors.Wrap(err, "Service.reset")
	}
	return nil
}
