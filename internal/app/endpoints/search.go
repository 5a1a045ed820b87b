package endpoints

import (
	"context"
	"errors"
	"fmt"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/app/service"
	"github.com/go-kit/kit/endpoint"
)

type SearchService interface {
	Search(ctx context.Context, req dto.SearchRequest) (dto.SearchResponse, error)
	Progress(searchID string) *dto.SearchProgress
	Cancel(ctx context.Context, searchID string) bool
	Filter(ctx context.Context, searchID string, filters *dto.FilterOption) ([]dto.Offer, error)
	Sort(ctx context.Context, searchID string, sortOption *dto.SortOption) ([]dto.Offer, error)
	InvalidateRoute(ctx context.Context, origin, destination string) (int, error)
	Health(ctx context.Context) dto.HealthResponse
}

type SearchEndpoint struct {
	Search          endpoint.Endpoint
	Progress        endpoint.Endpoint
	Cancel          endpoint.Endpoint
	Filter          endpoint.Endpoint
	Sort            endpoint.Endpoint
	InvalidateRoute endpoint.Endpoint
	Health          endpoint.Endpoint
}

func MakeSearchEndpoint(svc SearchService) SearchEndpoint {
	return SearchEndpoint{
		Search:          makeSearchEndpoint(svc),
		Progress:        makeProgressEndpoint(svc),
		Cancel:          makeCancelEndpoint(svc),
		Filter:          makeFilterEndpoint(svc),
		Sort:            makeSortEndpoint(svc),
		InvalidateRoute: makeInvalidateRouteEndpoint(svc),
		Health:          makeHealthEndpoint(svc),
	}
}

func makeSearchEndpoint(svc SearchService) endpoint.Endpoint {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.SearchRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		response, err := svc.Search(ctx, *request)
		if err != nil {
			return nil, fmt.Errorf("search service: %w", err)
		}

		return response, nil
	}
}

func makeProgressEndpoint(svc SearchService) endpoint.Endpoint {
	return func(_ context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.SearchIDRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		progress := svc.Progress(request.SearchID)
		if progress == nil {
			return nil, service.ErrSearchNotFound
		}

		return *progress, nil
	}
}

func makeCancelEndpoint(svc SearchService) endpoint.Endpoint {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.SearchIDRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		if !svc.Cancel(ctx, request.SearchID) {
			return nil, service.ErrSearchNotFound
		}

		return dto.CancelResponse{
			SearchID:  request.SearchID,
			Cancelled: true,
		}, nil
	}
}

func makeFilterEndpoint(svc SearchService) endpoint.Endpoint {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.FilterResultsRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		results, err := svc.Filter(ctx, request.SearchID, &request.Filters)
		if err != nil {
			return nil, fmt.Errorf("search service: %w", err)
		}

		return dto.FilteredResultsResponse{
			SearchID:     request.SearchID,
			Results:      results,
			TotalResults: len(results),
		}, nil
	}
}

func makeSortEndpoint(svc SearchService) endpoint.Endpoint {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.SortResultsRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		results, err := svc.Sort(ctx, request.SearchID, &request.SortOption)
		if err != nil {
			return nil, fmt.Errorf("search service: %w", err)
		}

		return dto.FilteredResultsResponse{
			SearchID:     request.SearchID,
			Results:      results,
			TotalResults: len(results),
		}, nil
	}
}

func makeInvalidateRouteEndpoint(svc SearchService) endpoint.Endpoint {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.InvalidateRouteRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		count, err := svc.InvalidateRoute(ctx, request.Origin, request.Destination)
		if err != nil {
			return nil, fmt.Errorf("search service: %w", err)
		}

		return dto.InvalidateRouteResponse{Invalidated: count}, nil
	}
}

func makeHealthEndpoint(svc SearchService) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		return svc.Health(ctx), nil
	}
}
