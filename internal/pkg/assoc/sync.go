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

// Package assoc reconciles an owner's association set against a target set
// of codes by inserting and deleting only the difference.
package assoc

import (
	"context"
	"strings"

	"github.com/go-arcade/iam/pkg/errs"
)

// Ref is a resolved target code.
type Ref[T comparable] struct {
	Code    string
	Key     T
	Enabled bool
}

// Links is the store side of one association kind. Every method runs on the
// transaction carried by ctx.
type Links[O, T comparable] interface {
	// LockOwner serializes writers of owner's links, failing with a
	// NOT_FOUND error when owner does not exist.
	LockOwner(ctx context.Context, owner O) error
	// ListTargets returns the keys currently linked to owner.
	ListTargets(ctx context.Context, owner O) ([]T, error)
	// Link inserts links, ignoring ones that already exist.
	Link(ctx context.Context, owner O, targets []T) error
	// Unlink deletes the given links and returns how many existed.
	Unlink(ctx context.Context, owner O, targets []T) (int64, error)
	// UnlinkAll deletes every link of owner.
	UnlinkAll(ctx context.Context, owner O) (int64, error)
}

// ResolveFunc resolves normalized codes in one batch. Unknown codes are
// simply absent from the result.
type ResolveFunc[T comparable] func(ctx context.Context, codes []string) ([]Ref[T], error)

// TxFunc runs fn in one all-or-nothing unit bound to the ctx it receives.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// Result counts the rows touched by one Replace.
type Result struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Kept    int `json:"kept"`
}

type Config[O, T comparable] struct {
	// Name labels the association in errors and metrics
	Name      string
	Links     Links[O, T]
	Resolve   ResolveFunc[T]
	Normalize func(string) string
	Tx        TxFunc
	// Observe is called after a successful commit
	Observe func(name string, added, removed int)
}

type Synchronizer[O, T comparable] struct {
	cfg Config[O, T]
}

func New[O, T comparable](cfg Config[O, T]) *Synchronizer[O, T] {
	if cfg.Normalize == nil {
		cfg.Normalize = strings.TrimSpace
	}
	if cfg.Tx == nil {
		cfg.Tx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Synchronizer[O, T]{cfg: cfg}
}

func (s *Synchronizer[O, T]) Name() string {
	return s.cfg.Name
}

// normalize folds codes and drops duplicates, keeping first-seen order.
func (s *Synchronizer[O, T]) normalize(codes []string) ([]string, error) {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for i, c := range codes {
		n := s.cfg.Normalize(c)
		if n == "" {
			return nil, errs.ErrBlankField.WithMsg("%s code at position %d is blank", s.cfg.Name, i)
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

// resolve maps every code to its ref or fails with UNKNOWN_CODE listing
// all missing codes.
func (s *Synchronizer[O, T]) resolve(ctx context.Context, codes []string) ([]Ref[T], error) {
	refs, err := s.cfg.Resolve(ctx, codes)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]Ref[T], len(refs))
	for _, r := range refs {
		byCode[r.Code] = r
	}

	ordered := make([]Ref[T], 0, len(codes))
	var missing []string
	for _, c := range codes {
		r, ok := byCode[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		ordered = append(ordered, r)
	}
	if len(missing) > 0 {
		return nil, errs.ErrUnknownCode.
			WithMsg("unknown %s code: %s", s.cfg.Name, strings.Join(missing, ", ")).
			WithDetail(missing)
	}
	return ordered, nil
}

func (s *Synchronizer[O, T]) observe(added, removed int) {
	if s.cfg.Observe != nil && (added > 0 || removed > 0) {
		s.cfg.Observe(s.cfg.Name, added, removed)
	}
}

// Replace reconciles owner's links to exactly codes. A nil codes is a
// no-op, an empty slice clears every link. Links present before and after
// are left untouched. Any unknown code aborts the whole call.
func (s *Synchronizer[O, T]) Replace(ctx context.Context, owner O, codes *[]string) (Result, error) {
	if codes == nil {
		return Result{}, nil
	}
	target, err := s.normalize(*codes)
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = s.cfg.Tx(ctx, func(ctx context.Context) error {
		if err := s.cfg.Links.LockOwner(ctx, owner); err != nil {
			return err
		}

		if len(target) == 0 {
			n, err := s.cfg.Links.UnlinkAll(ctx, owner)
			if err != nil {
				return err
			}
			res = Result{Removed: int(n)}
			return nil
		}

		refs, err := s.resolve(ctx, target)
		if err != nil {
			return err
		}
		current, err := s.cfg.Links.ListTargets(ctx, owner)
		if err != nil {
			return err
		}

		currentSet := make(map[T]struct{}, len(current))
		for _, k := range current {
			currentSet[k] = struct{}{}
		}
		targetSet := make(map[T]struct{}, len(refs))
		var toAdd []T
		var disabled []string
		for _, r := range refs {
			targetSet[r.Key] = struct{}{}
			if _, ok := currentSet[r.Key]; ok {
				continue
			}
			if !r.Enabled {
				disabled = append(disabled, r.Code)
				continue
			}
			toAdd = append(toAdd, r.Key)
		}
		if len(disabled) > 0 {
			return errs.ErrDisabledCode.
				WithMsg("disabled %s code: %s", s.cfg.Name, strings.Join(disabled, ", ")).
				WithDetail(disabled)
		}

		var toRemove []T
		for _, k := range current {
			if _, ok := targetSet[k]; !ok {
				toRemove = append(toRemove, k)
			}
		}

		if len(toRemove) > 0 {
			if _, err := s.cfg.Links.Unlink(ctx, owner, toRemove); err != nil {
				return err
			}
		}
		if len(toAdd) > 0 {
			if err := s.cfg.Links.Link(ctx, owner, toAdd); err != nil {
				return err
			}
		}
		res = Result{Added: len(toAdd), Removed: len(toRemove), Kept: len(refs) - len(toAdd)}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.observe(res.Added, res.Removed)
	return res, nil
}

// AddSingle links one code. Adding a present link is a silent success and
// reports false.
func (s *Synchronizer[O, T]) AddSingle(ctx context.Context, owner O, code string) (bool, error) {
	codes, err := s.normalize([]string{code})
	if err != nil {
		return false, err
	}

	added := false
	err = s.cfg.Tx(ctx, func(ctx context.Context) error {
		if err := s.cfg.Links.LockOwner(ctx, owner); err != nil {
			return err
		}
		refs, err := s.resolve(ctx, codes)
		if err != nil {
			return err
		}
		ref := refs[0]

		current, err := s.cfg.Links.ListTargets(ctx, owner)
		if err != nil {
			return err
		}
		for _, k := range current {
			if k == ref.Key {
				return nil
			}
		}
		if !ref.Enabled {
			return errs.ErrDisabledCode.WithMsg("disabled %s code: %s", s.cfg.Name, ref.Code).WithDetail([]string{ref.Code})
		}
		if err := s.cfg.Links.Link(ctx, owner, []T{ref.Key}); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if added {
		s.observe(1, 0)
	}
	return added, nil
}

// RemoveSingle unlinks one code. Removing an absent link, or a code that
// does not exist at all, is a silent success and reports false.
func (s *Synchronizer[O, T]) RemoveSingle(ctx context.Context, owner O, code string) (bool, error) {
	codes, err := s.normalize([]string{code})
	if err != nil {
		return false, err
	}

	removed := false
	err = s.cfg.Tx(ctx, func(ctx context.Context) error {
		if err := s.cfg.Links.LockOwner(ctx, owner); err != nil {
			return err
		}
		refs, err := s.cfg.Resolve(ctx, codes)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			return nil
		}
		n, err := s.cfg.Links.Unlink(ctx, owner, []T{refs[0].Key})
		if err != nil {
			return err
		}
		removed = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		s.observe(0, 1)
	}
	return removed, nil
}

// ClearAll unlinks everything from owner and returns the count removed.
func (s *Synchronizer[O, T]) ClearAll(ctx context.Context, owner O) (int64, error) {
	var n int64
	err := s.cfg.Tx(ctx, func(ctx context.Context) error {
		if err := s.cfg.Links.LockOwner(ctx, owner); err != nil {
			return err
		}
		var err error
		n, err = s.cfg.Links.UnlinkAll(ctx, owner)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.observe(0, int(n))
	return n, nil
}
