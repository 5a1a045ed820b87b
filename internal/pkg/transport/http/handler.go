package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/abndnt/paris-night-sub002/internal/pkg/exception"
	"github.com/go-chi/render"
	"github.com/go-kit/kit/endpoint"
)

// DecodeRequestFunc extracts a typed request object from an HTTP request.
type DecodeRequestFunc func(ctx context.Context, r *http.Request) (interface{}, error)

// EncodeResponseFunc writes an endpoint response to the HTTP response writer.
type EncodeResponseFunc func(ctx context.Context, w http.ResponseWriter, response interface{}) error

// MakeHandlerFunc glues decode -> endpoint -> encode into a handler; any
// error along the way is rendered by ErrorResponse.
func MakeHandlerFunc(
	endpoint endpoint.Endpoint,
	decoder DecodeRequestFunc,
	encoder EncodeResponseFunc,
) http.HandlerFunc {
	return func(respWriter http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		request, err := decoder(ctx, req)
		if err != nil {
			ErrorResponse(ctx, err, respWriter)

			return
		}

		response, err := endpoint(ctx, request)
		if err != nil {
			ErrorResponse(ctx, err, respWriter)

			return
		}

		if err := encoder(ctx, respWriter, response); err != nil {
			ErrorResponse(ctx, err, respWriter)
		}
	}
}

// DecodeRequest binds and validates a JSON body into T. T must implement
// render.Binder, which is where validation hooks in.
func DecodeRequest[T any](_ context.Context, req *http.Request) (interface{}, error) {
	request := new(T)

	if binder, ok := any(request).(render.Binder); ok {
		if err := render.Bind(req, binder); err != nil {
			var appErr exception.ApplicationError
			if errors.As(err, &appErr) {
				return nil, err
			}

			// malformed body, not an application failure
			return nil, exception.ApplicationError{
				StatusCode: http.StatusBadRequest,
				Message:    fmt.Sprintf("error decode request: %s", err),
			}
		}
	}

	return request, nil
}
