package flights

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kwairways/backend/internal/domain"
	"github.com/kwairways/backend/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, params SearchInput) ([]domain.Flight, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error)
}

type SearchInput struct {
	Departure     string
	Arrival       string
	DepartureDate time.Time
	Passengers    int
	SortBy        string
	Order         string
	Page          int
	Limit         int
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache Cache
}

func NewFlightService(repo repository.FlightRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) Search(ctx context.Context, params SearchInput) ([]domain.Flight, error) {
	if params.Passengers < 1 {
		params.Passengers = 1
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}

	return s.repo.Search(ctx, repository.SearchParams{
		Departure:     params.Departure,
		Arrival:       params.Arrival,
		DepartureDate: params.DepartureDate,
		Passengers:    params.Passengers,
		SortBy:        params.SortBy,
		Order:         params.Order,
		Limit:         params.Limit,
		Offset:        (params.Page - 1) * params.Limit,
	})
}

func (s *FlightService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

var _ FlightUseCase = (*FlightService)(nil)
