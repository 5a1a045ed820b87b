package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abndnt/paris-night-sub002/internal/app/config"
	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/app/endpoints"
	httptransport "github.com/abndnt/paris-night-sub002/internal/pkg/transport/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// MakeHTTPRouter builds the HTTP router with all the service endpoints.
func MakeHTTPRouter(
	cfg *config.Config,
	endpts endpoints.Endpoints,
) *chi.Mux {
	// Initialize Router
	router := chi.NewRouter()

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(router chi.Router) {
		router.Use(
			httptransport.RequestID(),
			httptransport.CORSMiddleware(),
			httptransport.Recoverer(slog.Default()),
			render.SetContentType(render.ContentTypeJSON),
		)

		router.Route("/searches", func(router chi.Router) {
			router.Post("/", httptransport.MakeHandlerFunc(
				endpts.SearchEndpoint.Search,
				httptransport.DecodeRequest[dto.SearchRequest],
				httptransport.ResponseWithBody,
			))

			router.Get("/{searchID}/progress", httptransport.MakeHandlerFunc(
				endpts.SearchEndpoint.Progress,
				decodeSearchIDRequest,
				httptransport.ResponseWithBody,
			))

			router.Delete("/{searchID}", httptransport.MakeHandlerFunc(
				endpts.SearchEndpoint.Cancel,
				decodeSearchIDRequest,
				httptransport.ResponseWithBody,
			))

			router.Post("/{searchID}/filter", httptransport.MakeHandlerFunc(
				endpts.SearchEndpoint.Filter,
				decodeFilterResultsRequest,
				httptransport.ResponseWithBody,
			))

			router.Get("/{searchID}/sort", httptransport.MakeHandlerFunc(
				endpts.SearchEndpoint.Sort,
				decodeSortResultsRequest,
				httptransport.ResponseWithBody,
			))
		})

		router.Get("/health/sources", httptransport.MakeHandlerFunc(
			endpts.SearchEndpoint.Health,
			decodeEmptyRequest,
			httptransport.ResponseWithBody,
		))

		router.Post("/cache/invalidate", httptransport.MakeHandlerFunc(
			endpts.SearchEndpoint.InvalidateRoute,
			httptransport.DecodeRequest[dto.InvalidateRouteRequest],
			httptransport.ResponseWithBody,
		))

		router.Route("/rewards", func(router chi.Router) {
			router.Post("/valuate", httptransport.MakeHandlerFunc(
				endpts.RewardsEndpoint.Valuate,
				httptransport.DecodeRequest[dto.ValuateRequest],
				httptransport.ResponseWithBody,
			))

			router.Post("/compare", httptransport.MakeHandlerFunc(
				endpts.RewardsEndpoint.CompareOptions,
				httptransport.DecodeRequest[dto.CompareOptionsRequest],
				httptransport.ResponseWithBody,
			))

			router.Post("/transfers", httptransport.MakeHandlerFunc(
				endpts.RewardsEndpoint.Transfers,
				httptransport.DecodeRequest[dto.TransferOpportunitiesRequest],
				httptransport.ResponseWithBody,
			))

			router.Post("/optimize", httptransport.MakeHandlerFunc(
				endpts.RewardsEndpoint.Optimize,
				httptransport.DecodeRequest[dto.OptimizePricingRequest],
				httptransport.ResponseWithBody,
			))

			router.Post("/redemption", httptransport.MakeHandlerFunc(
				endpts.RewardsEndpoint.Redemption,
				httptransport.DecodeRequest[dto.RedemptionAnalysisRequest],
				httptransport.ResponseWithBody,
			))
		})

		router.Post("/routes/optimize", httptransport.MakeHandlerFunc(
			endpts.RouteEndpoint.Optimize,
			httptransport.DecodeRequest[dto.RouteOptimizationRequest],
			httptransport.ResponseWithBody,
		))
	})

	return router
}

func decodeEmptyRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return nil, nil
}

func decodeSearchIDRequest(_ context.Context, req *http.Request) (interface{}, error) {
	request := &dto.SearchIDRequest{
		SearchID: chi.URLParam(req, "searchID"),
	}

	if err := request.Validate(); err != nil {
		return nil, err
	}

	return request, nil
}

func decodeFilterResultsRequest(ctx context.Context, req *http.Request) (interface{}, error) {
	decoded, err := httptransport.DecodeRequest[dto.FilterResultsRequest](ctx, req)
	if err != nil {
		return nil, err
	}

	request, _ := decoded.(*dto.FilterResultsRequest)
	request.SearchID = chi.URLParam(req, "searchID")

	return request, nil
}

func decodeSortResultsRequest(_ context.Context, req *http.Request) (interface{}, error) {
	request := &dto.SortResultsRequest{
		SearchID: chi.URLParam(req, "searchID"),
		SortOption: dto.SortOption{
			Field: req.URL.Query().Get("field"),
			Order: req.URL.Query().Get("order"),
		},
	}

	if err := request.Validate(); err != nil {
		return nil, err
	}

	return request, nil
}
