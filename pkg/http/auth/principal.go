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

// Package auth carries the authenticated principal through a request context.
package auth

import (
	"context"
	"slices"
	"strings"
)

// Anonymous is the subject of unauthenticated callers.
const Anonymous = "anonymousUser"

// Principal is the verified caller of one request.
type Principal struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

type principalKey struct{}

// Authenticated reports whether p names a real account.
func (p Principal) Authenticated() bool {
	s := strings.TrimSpace(p.Subject)
	return s != "" && s != Anonymous
}

func (p Principal) HasRole(code string) bool {
	return slices.Contains(p.Roles, code)
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal in ctx. ok is false when ctx carries
// none or only an anonymous one.
func FromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || !p.Authenticated() {
		return Principal{}, false
	}
	return p, true
}
