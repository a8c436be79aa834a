package tokens

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	cerrors "github.com/jrsteele09/go-course-client/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// StorageKey is the single key the token pair is persisted under.
const StorageKey = "auth_tokens"

// Pair is the credential pair held by a session. An empty string means the
// token is absent.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether neither token is set.
func (p Pair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// HasRefresh reports whether the pair can be renewed.
func (p Pair) HasRefresh() bool {
	return p.RefreshToken != ""
}

// Token returns the oauth2 view of the pair. Expiry is taken from the access
// token's exp claim when it is a JWT, otherwise it is left zero (never expires
// from the client's point of view; the server decides with a 401).
func (p Pair) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       AccessExpiry(p.AccessToken),
	}
}

// AccessExpiry reads the exp claim of a JWT without verifying its signature.
// The client never holds the signing keys.
func AccessExpiry(rawToken string) time.Time {
	claims, ok := UnverifiedClaims(rawToken)
	if !ok {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// UnverifiedClaims parses a JWT's claims without verification.
func UnverifiedClaims(rawToken string) (jwt.MapClaims, bool) {
	if strings.Count(rawToken, ".") != 2 {
		return nil, false
	}
	token, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// record is the persisted form of a Pair. Both tokens live in one record.
type record struct {
	AccessToken  *string `json:"accessToken"`
	RefreshToken *string `json:"refreshToken"`
}

// EncodeRecord serializes a pair as the single stored record.
func EncodeRecord(p Pair) ([]byte, error) {
	data, err := json.Marshal(record{
		AccessToken:  nullable(p.AccessToken),
		RefreshToken: nullable(p.RefreshToken),
	})
	if err != nil {
		return nil, errors.Wrap(err, "tokens.EncodeRecord Marshal")
	}
	return data, nil
}

// DecodeRecord parses a stored record. An empty input is the zero Pair.
func DecodeRecord(data []byte) (Pair, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Pair{}, nil
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return Pair{}, errors.Wrap(err, "tokens.DecodeRecord Unmarshal")
	}
	var p Pair
	if r.AccessToken != nil {
		p.AccessToken = *r.AccessToken
	}
	if r.RefreshToken != nil {
		p.RefreshToken = *r.RefreshToken
	}
	return p, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var (
	accessTokenFields  = []string{"accessToken", "token", "access_token"}
	refreshTokenFields = []string{"refreshToken", "refresh_token"}
)

// ParseTokenResponse normalizes a login or refresh response body. The API has
// used several names for the same fields, so the first non-empty one wins.
func ParseTokenResponse(body []byte) (Pair, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return Pair{}, errors.Wrap(err, "tokens.ParseTokenResponse Unmarshal")
	}
	p := Pair{
		AccessToken:  firstString(fields, accessTokenFields),
		RefreshToken: firstString(fields, refreshTokenFields),
	}
	if p.AccessToken == "" {
		return Pair{}, cerrors.ErrNoAccessToken
	}
	return p, nil
}

func firstString(fields map[string]any, names []string) string {
	for _, name := range names {
		if s, ok := fields[name].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
