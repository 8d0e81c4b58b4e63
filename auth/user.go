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

// Package auth authenticates callers of the research agent's RPC endpoint.
//
// Requests carry an HS256 signed bearer JWT. The verified caller is attached to
// the request context as a [User].
package auth

import "context"

// User is the caller of an RPC.
type User interface {
	// IsAuthenticated reports whether the caller presented a valid credential.
	IsAuthenticated() bool

	// UserName returns the caller's name, empty for unauthenticated callers.
	UserName() string
}

// UnauthenticatedUser is the caller of a server running without authentication.
//
// The zero value is ready to use.
type UnauthenticatedUser struct{}

// IsAuthenticated always returns false.
func (UnauthenticatedUser) IsAuthenticated() bool { return false }

// UserName always returns an empty string.
func (UnauthenticatedUser) UserName() string { return "" }

// TokenUser is a caller identified by a verified token subject.
type TokenUser struct {
	Subject string
}

// IsAuthenticated always returns true.
func (TokenUser) IsAuthenticated() bool { return true }

// UserName returns the token subject.
func (u TokenUser) UserName() string { return u.Subject }

var (
	_ User = UnauthenticatedUser{}
	_ User = TokenUser{}
)

type userKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user stored in ctx, or [UnauthenticatedUser].
func UserFromContext(ctx context.Context) User {
	if u, ok := ctx.Value(userKey{}).(User); ok {
		return u
	}
	return UnauthenticatedUser{}
}
