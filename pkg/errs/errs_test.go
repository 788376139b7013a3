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

package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	derived := ErrUnknownCode.WithMsg("unknown role codes: %v", []string{"NOPE"})
	wrapped := fmt.Errorf("replace roles: %w", derived)

	assert.True(t, errors.Is(wrapped, ErrUnknownCode))
	assert.False(t, errors.Is(wrapped, ErrDuplicateCode))
	assert.Equal(t, "UNKNOWN_CODE: unknown role codes: [NOPE]", derived.Error())
}

func TestError_CopiesDoNotMutateSentinel(t *testing.T) {
	_ = ErrReferenced.WithMsg("role %d", 7).WithDetail(map[string]int{"userRoles": 2})

	assert.Equal(t, "entity is still referenced by associations", ErrReferenced.Msg)
	assert.Nil(t, ErrReferenced.Detail)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "typed", err: ErrBadCredentials, want: KindBadCredentials},
		{name: "wrapped typed", err: fmt.Errorf("login: %w", ErrAccountLocked), want: KindLocked},
		{name: "foreign", err: errors.New("boom"), want: KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)

	require.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindInternal, e.Kind)
}
