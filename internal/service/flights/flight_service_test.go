package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kwairways/backend/internal/domain"
	"github.com/kwairways/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Search(ctx context.Context, params repository.SearchParams) ([]domain.Flight, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Flight, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ReserveSeats(ctx context.Context, tx pgx.Tx, id uuid.UUID, n int) error {
	args := m.Called(ctx, tx, id, n)
	return args.Error(0)
}

func (m *MockFlightRepository) ReleaseSeats(ctx context.Context, tx pgx.Tx, id uuid.UUID, n int) error {
	args := m.Called(ctx, tx, id, n)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(repo, cache)
	ctx := context.Background()

	cached := []domain.Flight{{ID: uuid.New(), FlightNumber: "KW101"}}
	cache.On("GetFlights", ctx).Return(cached, nil).Once()

	flights, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, flights)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(repo, cache)
	ctx := context.Background()

	fromDB := []domain.Flight{{ID: uuid.New(), FlightNumber: "KW202"}}
	cache.On("GetFlights", ctx).Return(nil, nil).Once()
	repo.On("List", ctx).Return(fromDB, nil).Once()
	cache.On("SetFlights", ctx, fromDB).Return(nil).Once()

	flights, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, flights)
	cache.AssertExpectations(t)
}

func TestFlightService_List_CacheErrorFallsThrough(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(repo, cache)
	ctx := context.Background()

	fromDB := []domain.Flight{{ID: uuid.New()}}
	cache.On("GetFlights", ctx).Return(nil, errors.New("redis down")).Once()
	repo.On("List", ctx).Return(fromDB, nil).Once()
	cache.On("SetFlights", ctx, fromDB).Return(nil).Once()

	flights, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, flights)
}

func TestFlightService_Search_NormalizesPaging(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, nil)
	ctx := context.Background()
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	repo.On("Search", ctx, repository.SearchParams{
		Departure:     "TPE",
		Arrival:       "NRT",
		DepartureDate: date,
		Passengers:    1,
		SortBy:        "price",
		Order:         "asc",
		Limit:         20,
		Offset:        40,
	}).Return([]domain.Flight{}, nil).Once()

	_, err := service.Search(ctx, SearchInput{
		Departure:     "TPE",
		Arrival:       "NRT",
		DepartureDate: date,
		Passengers:    0,
		SortBy:        "price",
		Order:         "asc",
		Page:          3,
		Limit:         200,
	})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestFlightService_GetByID_NotFound(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, nil)
	ctx := context.Background()
	id := uuid.New()

	repo.On("GetByID", ctx, id).Return(nil, domain.ErrFlightNotFound).Once()

	flight, err := service.GetByID(ctx, id)

	assert.Nil(t, flight)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}
