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

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"  Dispatcher ", "ADMIN", "fms_vehicle_read", "\tMiXeD\n", "", "straße"}
	for _, in := range inputs {
		u := NormalizeUsername(in)
		assert.Equal(t, u, NormalizeUsername(u), "username %q", in)
		c := NormalizeCode(in)
		assert.Equal(t, c, NormalizeCode(c), "code %q", in)
	}
	assert.Equal(t, "dispatcher", NormalizeUsername("  Dispatcher "))
	assert.Equal(t, "DISPATCH", NormalizeCode(" dispatch"))
}

func TestPermissionCode(t *testing.T) {
	assert.Equal(t, "FMS_VEHICLE_READ", PermissionCode(" fms", "Vehicle ", "read"))
	assert.Equal(t, "FMS_VEHICLE", GroupKey("fms", "vehicle"))
}

func TestRolePermission_IsEffectiveAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		rp   RolePermission
		want bool
	}{
		{"open window", RolePermission{Enabled: true}, true},
		{"disabled", RolePermission{Enabled: false}, false},
		{"ended", RolePermission{Enabled: true, EffectiveTo: &past}, false},
		{"not started", RolePermission{Enabled: true, EffectiveFrom: &future}, false},
		{"inside", RolePermission{Enabled: true, EffectiveFrom: &past, EffectiveTo: &future}, true},
		{"from inclusive", RolePermission{Enabled: true, EffectiveFrom: &now}, true},
		{"to exclusive", RolePermission{Enabled: true, EffectiveTo: &now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rp.IsEffectiveAt(now))
		})
	}
}

func TestNormalizePage(t *testing.T) {
	n, s := NormalizePage(0, 0)
	assert.Equal(t, 1, n)
	assert.Equal(t, 20, s)
	_, s = NormalizePage(2, 1000)
	assert.Equal(t, 100, s)
}
