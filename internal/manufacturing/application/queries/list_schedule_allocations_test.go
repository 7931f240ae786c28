package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/domain"
	projectDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
)

type mockScheduleRepo struct {
	mock.Mock
}

func (m *mockScheduleRepo) ReplaceAll(ctx context.Context, schedules []domain.Schedule) error {
	return m.Called(ctx, schedules).Error(0)
}

func (m *mockScheduleRepo) List(ctx context.Context, filter domain.ScheduleFilter) ([]domain.Schedule, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Upsert(ctx context.Context, project *projectDomain.Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id int64) (*projectDomain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projectDomain.Project), args.Error(1)
}

func (m *mockProjectRepo) List(ctx context.Context, filter projectDomain.ProjectFilter) ([]*projectDomain.Project, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*projectDomain.Project), args.Error(1)
}

func (m *mockProjectRepo) ListByIDs(ctx context.Context, ids []int64) (map[int64]*projectDomain.Project, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*projectDomain.Project), args.Error(1)
}

func TestListScheduleAllocationsHandler_Handle(t *testing.T) {
	schedules := new(mockScheduleRepo)
	projects := new(mockProjectRepo)

	schedules.On("List", mock.Anything, domain.ScheduleFilter{BayID: 3}).Return([]domain.Schedule{
		{ID: 1, ProjectID: 10, BayID: 3, BayName: "Bay 3", Status: "scheduled"},
		{ID: 2, ProjectID: 99, BayID: 3, BayName: "Bay 3"},
	}, nil)
	projects.On("ListByIDs", mock.Anything, []int64{10, 99}).Return(map[int64]*projectDomain.Project{
		10: {
			ID:            10,
			ProjectNumber: "MI-0010",
			Name:          "Shuttle",
			Allocations:   projectDomain.Allocations{projectDomain.Fabrication: 50, projectDomain.Paint: 50},
			Visibility:    projectDomain.AllVisible().Hide(projectDomain.Paint),
		},
	}, nil)

	handler := NewListScheduleAllocationsHandler(schedules, projects)
	result, err := handler.Handle(context.Background(), ListScheduleAllocationsQuery{BayID: 3})
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "MI-0010", result[0].ProjectNumber)
	require.NotNil(t, result[0].Allocations)
	assert.Equal(t, 100.0, result[0].Allocations.Redistributed.Get(projectDomain.Fabrication))
	assert.Equal(t, 0.0, result[0].Allocations.Redistributed.Get(projectDomain.Paint))

	assert.Equal(t, int64(99), result[1].ProjectID)
	assert.Nil(t, result[1].Allocations)

	schedules.AssertExpectations(t)
	projects.AssertExpectations(t)
}

func TestListScheduleAllocationsHandler_Errors(t *testing.T) {
	t.Run("schedule repository", func(t *testing.T) {
		schedules := new(mockScheduleRepo)
		schedules.On("List", mock.Anything, domain.ScheduleFilter{}).Return(nil, errors.New("database error"))

		_, err := NewListScheduleAllocationsHandler(schedules, new(mockProjectRepo)).Handle(context.Background(), ListScheduleAllocationsQuery{})
		assert.Error(t, err)
	})

	t.Run("project repository", func(t *testing.T) {
		schedules := new(mockScheduleRepo)
		projects := new(mockProjectRepo)
		dbErr := errors.New("database error")
		schedules.On("List", mock.Anything, domain.ScheduleFilter{}).Return([]domain.Schedule{{ID: 1, ProjectID: 1}}, nil)
		projects.On("ListByIDs", mock.Anything, []int64{1}).Return(nil, dbErr)

		_, err := NewListScheduleAllocationsHandler(schedules, projects).Handle(context.Background(), ListScheduleAllocationsQuery{})
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestListScheduleAllocationsHandler_Empty(t *testing.T) {
	schedules := new(mockScheduleRepo)
	projects := new(mockProjectRepo)
	schedules.On("List", mock.Anything, domain.ScheduleFilter{}).Return([]domain.Schedule(nil), nil)
	projects.On("ListByIDs", mock.Anything, []int64{}).Return(map[int64]*projectDomain.Project{}, nil)

	result, err := NewListScheduleAllocationsHandler(schedules, projects).Handle(context.Background(), ListScheduleAllocationsQuery{})
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}
