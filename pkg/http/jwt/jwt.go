// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/iam/pkg/errs"
	"github.com/go-arcade/iam/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the access token payload.
type Claims struct {
	Roles StringList `json:"roles"`
	jwt.RegisteredClaims
}

// StringList decodes a claim serialized as a string, a list, or null.
type StringList []string

func (s *StringList) UnmarshalJSON(b []byte) error {
	var raw any
	if err := sonic.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = toStringList(raw)
	return nil
}

func toStringList(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			if str, ok := item.(string); ok {
				out = append(out, str)
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

// DeriveKey decodes secret as base64 when it is valid padded base64,
// otherwise the raw bytes are the key.
func DeriveKey(secret string) []byte {
	if len(secret)%4 == 0 {
		if key, err := base64.StdEncoding.DecodeString(secret); err == nil && len(key) > 0 {
			return key
		}
	}
	return []byte(secret)
}

// Issuer signs and verifies HS256 access tokens. Safe for concurrent use.
type Issuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

func NewIssuer(secret, issuer string, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = 120 * time.Minute
	}
	i := &Issuer{
		key:    DeriveKey(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// TTL returns the default token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for subject. A zero ttl uses the default lifetime.
func (i *Issuer) Issue(subject string, roles []string, ttl time.Duration) (string, time.Time, error) {
	if ttl == 0 {
		ttl = i.ttl
	}
	now := i.now()
	exp := now.Add(ttl)
	if roles == nil {
		roles = []string{}
	}
	claims := &Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        id.GetUUIDWithoutDashes(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}

// Verify checks signature, issuer and expiry. Every failure is TOKEN_INVALID.
func (i *Issuer) Verify(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errs.ErrTokenInvalid
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.key, nil
	}, opts...)
	if err != nil {
		return nil, errs.ErrTokenInvalid.Wrap(err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errs.ErrTokenInvalid
	}
	if claims.Roles == nil {
		claims.Roles = StringList{}
	}
	return claims, nil
}
