//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/feiralivre/fulfillment/internal/apperr"
	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/repository"
)

type DriverRepositorySuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *repository.DriverRepo
}

func (s *DriverRepositorySuite) SetupSuite() {
	s.Require().NotNil(tcPool, "tcPool must be initialized in TestMain")

	s.pool = tcPool
	s.repo = repository.NewDriverRepo(tcPool)
}

func (s *DriverRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(),
		`TRUNCATE delivery_assignments, drivers RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *DriverRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()

	in := &domain.Driver{
		Name:   "Carlos Lima",
		Phone:  "+5511987650001",
		Status: domain.DriverActive,
	}

	id, err := s.repo.Create(ctx, in)
	s.Require().NoError(err)

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(got)

	s.Equal(id, got.ID)
	s.Equal(in.Name, got.Name)
	s.Equal(in.Phone, got.Phone)
	s.Equal(in.Status, got.Status)
}

func (s *DriverRepositorySuite) TestCreate_DuplicatePhone() {
	ctx := context.Background()

	phone := "+5511987650001"
	_, err := s.repo.Create(ctx, &domain.Driver{
		Name: "Carlos Lima", Phone: phone, Status: domain.DriverActive,
	})
	s.Require().NoError(err)

	_, err = s.repo.Create(ctx, &domain.Driver{
		Name: "Outro Carlos", Phone: phone, Status: domain.DriverActive,
	})
	s.ErrorIs(err, apperr.ErrConflict, "expected conflict for duplicate phone")
}

func (s *DriverRepositorySuite) TestGetNotFound() {
	ctx := context.Background()

	got, err := s.repo.Get(ctx, 9999)
	s.Require().NoError(err)
	s.Require().Nil(got)
}

func (s *DriverRepositorySuite) TestListWithLimitOffset() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.repo.Create(ctx, &domain.Driver{
			Name:   fmt.Sprintf("Motorista %d", i+1),
			Phone:  fmt.Sprintf("+551198765000%d", i+1),
			Status: domain.DriverActive,
		})
		s.Require().NoError(err)
	}

	limit := 2
	offset := 1

	list, err := s.repo.List(ctx, &limit, &offset)
	s.Require().NoError(err)

	s.Len(list, 2)
	s.True(list[0].ID < list[1].ID)
}

func (s *DriverRepositorySuite) TestUpdatePartial() {
	ctx := context.Background()

	id, err := s.repo.Create(ctx, &domain.Driver{
		Name: "Carlo Lima", Phone: "+5511987650001", Status: domain.DriverActive,
	})
	s.Require().NoError(err)

	newName := "Carlos Lima"
	newStatus := domain.DriverInactive
	ok, err := s.repo.UpdatePartial(ctx, domain.PartialDriverUpdate{
		ID:     id,
		Name:   &newName,
		Status: &newStatus,
	})
	s.Require().NoError(err)
	s.True(ok)

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)

	s.Equal(newName, got.Name)
	s.Equal("+5511987650001", got.Phone)
	s.Equal(domain.DriverInactive, got.Status)
}

func (s *DriverRepositorySuite) TestUpdatePartial_DuplicatePhone() {
	ctx := context.Background()

	phone1 := "+5511987650001"
	_, err := s.repo.Create(ctx, &domain.Driver{
		Name: "Carlos Lima", Phone: phone1, Status: domain.DriverActive,
	})
	s.Require().NoError(err)

	id2, err := s.repo.Create(ctx, &domain.Driver{
		Name: "Ana Rocha", Phone: "+5511987650002", Status: domain.DriverActive,
	})
	s.Require().NoError(err)

	ok, err := s.repo.UpdatePartial(ctx, domain.PartialDriverUpdate{
		ID:    id2,
		Phone: &phone1,
	})
	s.False(ok, "row must not be marked as updated on duplicate")
	s.ErrorIs(err, apperr.ErrConflict, "expected apperr.ErrConflict on duplicate phone")
}

func (s *DriverRepositorySuite) TestGet_ContextCanceled_ReturnsError() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := s.repo.Get(ctx, 1)
	s.Nil(got)
	s.Error(err)
}

func (s *DriverRepositorySuite) TestCreate_ContextCanceled_ReturnsError() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.repo.Create(ctx, &domain.Driver{
		Name: "Carlos Lima", Phone: "+5511987650009", Status: domain.DriverActive,
	})
	s.Error(err)
	s.ErrorIs(err, context.Canceled)
}

func (s *DriverRepositorySuite) TestList_ContextCanceled_ReturnsError() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	list, err := s.repo.List(ctx, nil, nil)
	s.Nil(list)
	s.Error(err)
	s.ErrorIs(err, context.Canceled)
}

func TestDriverRepositorySuite(t *testing.T) {
	suite.Run(t, new(DriverRepositorySuite))
}
