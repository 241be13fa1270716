/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package querydsl

import (
	"context"

	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/entity"
	"github.com/tomoncle/querydsl/repository"
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
)

// Statistics summarises member ages overall and per team.
type Statistics struct {
	Ages   *entity.AgeStats        `json:"ages"`
	ByTeam []entity.TeamAverageAge `json:"by_team"`
}

type MemberService interface {
	// Search pages members matching cond, counting with the content query.
	Search(ctx context.Context, cond *types.SearchCondition, req *types.PageRequest) (*types.Page[entity.Member], error)

	// SearchSplit pages members matching cond using a separate count query.
	SearchSplit(ctx context.Context, cond *types.SearchCondition, req *types.PageRequest) (*types.Page[entity.Member], error)

	// SearchWithTx runs Search inside a read transaction.
	SearchWithTx(ctx context.Context, cond *types.SearchCondition, req *types.PageRequest) (*types.Page[entity.Member], error)

	// Statistics returns age aggregates.
	Statistics(ctx context.Context) (*Statistics, error)

	// Repository exposes the underlying member repository.
	Repository() (*repository.MemberRepository, error)
}

type memberServiceImpl struct {
	source func() (bun.IDB, error)
}

// NewMemberService returns a MemberService backed by db.
func NewMemberService(db bun.IDB) MemberService {
	return &memberServiceImpl{source: func() (bun.IDB, error) { return db, nil }}
}

// NewMemberServiceFromGlobal returns a MemberService backed by the global
// database connection. The connection is looked up on every call, so the
// service works once database.InitDB has run and fails with
// database.ErrNotInitialized before that.
func NewMemberServiceFromGlobal() MemberService {
	return &memberServiceImpl{source: func() (bun.IDB, error) {
		db := database.GetDB()
		if db == nil {
			return nil, database.ErrNotInitialized
		}
		return db, nil
	}}
}

func (s *memberServiceImpl) resolve() (bun.IDB, *repository.MemberRepository, error) {
	db, err := s.source()
	if err != nil {
		return nil, nil, err
	}
	return db, repository.NewMemberRepository(db), nil
}

func (s *memberServiceImpl) Repository() (*repository.MemberRepository, error) {
	_, repo, err := s.resolve()
	return repo, err
}

func (s *memberServiceImpl) Search(ctx context.Context, cond *types.SearchCondition, req *types.PageRequest) (*types.Page[entity.Member], error) {
	repo, err := s.Repository()
	if err != nil {
		return nil, err
	}
	return repo.Search(ctx, cond, req)
}

func (s *memberServiceImpl) SearchSplit(ctx context.Context, cond *types.SearchCondition, req *types.PageRequest) (*types.Page[entity.Member], error) {
	repo, err := s.Repository()
	if err != nil {
		return nil, err
	}
	return repo.SearchSplit(ctx, cond, req)
}

func (s *memberServiceImpl) SearchWithTx(ctx context.Context, cond *types.SearchCondition, req *types.PageRequest) (*types.Page[entity.Member], error) {
	db, repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	var page *types.Page[entity.Member]
	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		page, err = repo.WithTx(tx).Search(ctx, cond, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *memberServiceImpl) Statistics(ctx context.Context) (*Statistics, error) {
	repo, err := s.Repository()
	if err != nil {
		return nil, err
	}
	ages, err := repo.AgeStatistics(ctx)
	if err != nil {
		return nil, err
	}
	byTeam, err := repo.AverageAgeByTeam(ctx)
	if err != nil {
		return nil, err
	}
	return &Statistics{Ages: ages, ByTeam: byTeam}, nil
}
