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
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeUsername trims and lower-cases s.
func NormalizeUsername(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// NormalizeCode trims and upper-cases s.
func NormalizeCode(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// PermissionCode derives SYSTEM_RESOURCE_ACTION from the three segments.
func PermissionCode(system, resource, action string) string {
	return NormalizeCode(system) + "_" + NormalizeCode(resource) + "_" + NormalizeCode(action)
}

// GroupKey derives SYSTEM_RESOURCE.
func GroupKey(system, resource string) string {
	return NormalizeCode(system) + "_" + NormalizeCode(resource)
}
