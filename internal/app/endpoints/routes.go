package endpoints

import (
	"context"
	"errors"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/go-kit/kit/endpoint"
)

type RouteService interface {
	Optimize(criteria dto.SearchCriteria, pool []dto.Offer) dto.RouteOptimizationResult
}

type RouteEndpoint struct {
	Optimize endpoint.Endpoint
}

func MakeRouteEndpoint(svc RouteService) RouteEndpoint {
	return RouteEndpoint{
		Optimize: makeOptimizeRoutesEndpoint(svc),
	}
}

func makeOptimizeRoutesEndpoint(svc RouteService) endpoint.Endpoint {
	return func(_ context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.RouteOptimizationRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		return svc.Optimize(request.SearchCriteria, request.Offers), nil
	}
}
