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

package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMetrics_Record(t *testing.T) {
	m := NewAuthMetrics(prometheus.NewRegistry())

	m.ObserveLogin(OutcomeSuccess, 10*time.Millisecond)
	m.ObserveLogin(OutcomeBadCredentials, time.Millisecond)
	m.ObserveLogin(OutcomeBadCredentials, time.Millisecond)
	m.TokenIssued(TokenLogin)
	m.SyncChanged("user_role", 2, 1)
	m.SyncChanged("user_role", 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(OutcomeBadCredentials)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensIssued.WithLabelValues(TokenLogin)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SyncChanges.WithLabelValues("user_role", "add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncChanges.WithLabelValues("user_role", "remove")))
}

func TestAuthMetrics_NilSafe(t *testing.T) {
	var m *AuthMetrics
	assert.NotPanics(t, func() {
		m.ObserveLogin(OutcomeLocked, time.Second)
		m.TokenIssued(TokenRefresh)
		m.SyncChanged("role_permission", 1, 1)
	})
}

func TestServer_Handler(t *testing.T) {
	s := NewServer(MetricsConfig{})
	m := ProvideAuthMetrics(s)
	m.TokenIssued(TokenRefresh)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `iam_tokens_issued_total{kind="refresh"} 1`))
}

func TestServer_StartDisabled(t *testing.T) {
	s := NewServer(MetricsConfig{Enable: false})
	require.NoError(t, s.Start())
	assert.NoError(t, s.Stop(context.Background()))
}
