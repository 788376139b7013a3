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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Login outcomes
const (
	OutcomeSuccess        = "success"
	OutcomeBadCredentials = "bad_credentials"
	OutcomeDisabled       = "disabled"
	OutcomeLocked         = "locked"
	OutcomeError          = "error"
)

// Token kinds
const (
	TokenLogin   = "login"
	TokenRefresh = "refresh"
)

// AuthMetrics holds the identity collectors. A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	LoginAttempts *prometheus.CounterVec
	LoginDuration prometheus.Histogram
	TokensIssued  *prometheus.CounterVec
	SyncChanges   *prometheus.CounterVec
}

// NewAuthMetrics creates the collectors and registers them on reg.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iam_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		LoginDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "iam_login_duration_seconds",
				Help:    "Login latency including password hashing",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		TokensIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iam_tokens_issued_total",
				Help: "Access tokens issued by kind",
			},
			[]string{"kind"},
		),
		SyncChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iam_sync_changes_total",
				Help: "Association rows added or removed",
			},
			[]string{"association", "op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.LoginAttempts, m.LoginDuration, m.TokensIssued, m.SyncChanges)
	}
	return m
}

func (m *AuthMetrics) ObserveLogin(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
	m.LoginDuration.Observe(elapsed.Seconds())
}

func (m *AuthMetrics) TokenIssued(kind string) {
	if m == nil {
		return
	}
	m.TokensIssued.WithLabelValues(kind).Inc()
}

// SyncChanged records one association diff.
func (m *AuthMetrics) SyncChanged(association string, added, removed int) {
	if m == nil {
		return
	}
	if added > 0 {
		m.SyncChanges.WithLabelValues(association, "add").Add(float64(added))
	}
	if removed > 0 {
		m.SyncChanges.WithLabelValues(association, "remove").Add(float64(removed))
	}
}
