// Copyright 2025 The Go A2A Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

var (
	// ErrMissingToken is returned when the request has no bearer token.
	ErrMissingToken = errors.New("auth: missing bearer token")

	// ErrInvalidToken is returned when the bearer token fails verification.
	ErrInvalidToken = errors.New("auth: invalid bearer token")
)

// Authenticator identifies the caller of an HTTP request.
type Authenticator interface {
	Authenticate(r *http.Request) (User, error)
}

// JWTAuthenticator verifies HS256 bearer tokens signed with a shared secret.
type JWTAuthenticator struct {
	secret []byte
	issuer string
	skew   time.Duration
}

var _ Authenticator = (*JWTAuthenticator)(nil)

// JWTOption configures a [JWTAuthenticator].
type JWTOption func(*JWTAuthenticator)

// WithIssuer requires tokens to carry the iss claim.
func WithIssuer(issuer string) JWTOption {
	return func(a *JWTAuthenticator) {
		a.issuer = issuer
	}
}

// WithAcceptableSkew tolerates clock skew when checking exp and nbf.
func WithAcceptableSkew(d time.Duration) JWTOption {
	return func(a *JWTAuthenticator) {
		a.skew = d
	}
}

// NewJWTAuthenticator returns a JWTAuthenticator for secret.
func NewJWTAuthenticator(secret []byte, opts ...JWTOption) (*JWTAuthenticator, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: JWT secret is empty")
	}
	a := &JWTAuthenticator{secret: secret}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Authenticate implements [Authenticator].
func (a *JWTAuthenticator) Authenticate(r *http.Request) (User, error) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256(), a.secret),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(a.skew),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	sub, _ := token.Subject()
	return TokenUser{Subject: sub}, nil
}

// Sign issues an HS256 token for subject valid for ttl. It is meant for CLI clients and tests.
func Sign(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
