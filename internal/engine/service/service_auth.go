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

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/internal/engine/repo"
	"github.com/go-arcade/iam/pkg/errs"
	"github.com/go-arcade/iam/pkg/http/auth"
	"github.com/go-arcade/iam/pkg/http/jwt"
	"github.com/go-arcade/iam/pkg/log"
	"github.com/go-arcade/iam/pkg/metrics"
)

const TokenType = "Bearer"

type AuthService struct {
	userRepo  repo.IUserRepository
	snapshots *SnapshotService
	issuer    *jwt.Issuer
	metrics   *metrics.AuthMetrics
	now       func() time.Time
}

func NewAuthService(userRepo repo.IUserRepository, snapshots *SnapshotService, issuer *jwt.Issuer, m *metrics.AuthMetrics) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		snapshots: snapshots,
		issuer:    issuer,
		metrics:   m,
		now:       time.Now,
	}
}

// Login verifies credentials and issues a token. An unknown username and a
// wrong password fail with the same BAD_CREDENTIALS error.
func (as *AuthService) Login(ctx context.Context, req *model.LoginReq) (resp *model.TokenResp, err error) {
	logger := log.WithContext(ctx)
	username := model.NormalizeUsername(req.Username)
	if username == "" || strings.TrimSpace(req.Password) == "" {
		return nil, errs.ErrEmptyInput.WithMsg("username and password are required")
	}

	start := as.now()
	defer func() {
		as.metrics.ObserveLogin(loginOutcome(err), as.now().Sub(start))
	}()

	user, err := as.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			comparePassword(string(dummyHash), req.Password)
			logger.Infow("login rejected", "username", username, "reason", "user not found")
			return nil, errs.ErrBadCredentials
		}
		return nil, err
	}

	if !user.Enabled {
		logger.Infow("login rejected", "username", username, "reason", "disabled")
		return nil, errs.ErrAccountDisabled
	}
	if user.Locked {
		logger.Infow("login rejected", "username", username, "reason", "locked")
		return nil, errs.ErrAccountLocked
	}

	if !comparePassword(user.PasswordHash, req.Password) {
		if err := as.userRepo.RecordLoginFailure(ctx, user.ID); err != nil {
			logger.Errorw("failed to record login failure", "username", username, "error", err)
			return nil, err
		}
		logger.Infow("login rejected", "username", username, "reason", "wrong password")
		return nil, errs.ErrBadCredentials
	}

	now := as.now()
	if err := as.userRepo.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		logger.Errorw("failed to record login success", "username", username, "error", err)
		return nil, err
	}
	user.LoginFailCount = 0
	user.LastLoginAt = &now
	user.Locked = false
	user.LockedAt = nil

	snap, err := as.snapshots.Get(ctx, user.ID)
	if err != nil {
		logger.Errorw("failed to build snapshot", "username", username, "error", err)
		return nil, err
	}

	resp, err = as.issue(user.Username, snap.RoleCodes, metrics.TokenLogin)
	if err != nil {
		return nil, err
	}
	resp.Profile = model.NewProfile(user, snap)
	logger.Infow("login succeeded", "username", username, "roles", snap.RoleCodes)
	return resp, nil
}

// Me returns the profile of the authenticated caller.
func (as *AuthService) Me(ctx context.Context) (*model.Profile, error) {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return nil, errs.ErrUnauthorized
	}
	return as.profileOf(ctx, p.Subject)
}

func (as *AuthService) profileOf(ctx context.Context, subject string) (*model.Profile, error) {
	user, err := as.userRepo.GetByUsername(ctx, model.NormalizeUsername(subject))
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return nil, errs.ErrUnauthorized.WithMsg("token subject no longer exists")
		}
		return nil, err
	}
	snap, err := as.snapshots.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return model.NewProfile(user, snap), nil
}

// Refresh re-issues a still valid token with the same subject and roles.
// The token roles are taken from the old claims; the profile is current.
func (as *AuthService) Refresh(ctx context.Context, token string) (*model.TokenResp, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errs.ErrUnauthorized
	}
	claims, err := as.issuer.Verify(token)
	if err != nil {
		log.WithContext(ctx).Debugw("refresh rejected", "error", err)
		return nil, err
	}
	profile, err := as.profileOf(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	resp, err := as.issue(claims.Subject, claims.Roles, metrics.TokenRefresh)
	if err != nil {
		return nil, err
	}
	resp.Profile = profile
	return resp, nil
}

func (as *AuthService) issue(subject string, roles []string, kind string) (*model.TokenResp, error) {
	token, _, err := as.issuer.Issue(subject, roles, 0)
	if err != nil {
		return nil, errs.Internal(err)
	}
	as.metrics.TokenIssued(kind)
	return &model.TokenResp{
		AccessToken:      token,
		TokenType:        TokenType,
		ExpiresInSeconds: int64(as.issuer.TTL() / time.Second),
	}, nil
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, errs.ErrBadCredentials):
		return metrics.OutcomeBadCredentials
	case errors.Is(err, errs.ErrAccountDisabled):
		return metrics.OutcomeDisabled
	case errors.Is(err, errs.ErrAccountLocked):
		return metrics.OutcomeLocked
	default:
		return metrics.OutcomeError
	}
}
