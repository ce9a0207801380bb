package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// MaxRequestBodyBytes bounds every decoded request body.
const MaxRequestBodyBytes = 1 << 20

// RequestBody decodes a JSON body. A body that is not JSON is a parse
// failure. A body over MaxRequestBodyBytes is rejected as invalid input.
func RequestBody[TRequest any](r *http.Request) (TRequest, error) {
	var request TRequest

	body := http.MaxBytesReader(nil, r.Body, MaxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(&request); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return request, Validationf("request body is larger than %d bytes", tooLarge.Limit)
		}
		return request, Parse(err, "malformed request body")
	}

	return request, nil
}

// Int64Param reads a positive integer route parameter.
func Int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, Validationf("invalid route parameter '%s': '%s'", name, raw)
	}

	return value, nil
}

func IntParam(r *http.Request, name string) (int, error) {
	value, err := Int64Param(r, name)
	return int(value), err
}

type ResponseOption func(http.ResponseWriter, *http.Request)

func WithHeader(header, value string) ResponseOption {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add(header, value)
	}
}

func WithCookie(cookie *http.Cookie) ResponseOption {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, cookie)
	}
}

func WriteOK(w http.ResponseWriter, r *http.Request, body interface{}, opts ...ResponseOption) {
	WriteResponse(w, r, http.StatusOK, body, opts...)
}

func WriteCreated(w http.ResponseWriter, r *http.Request, location string, body interface{}) {
	WriteResponse(w, r, http.StatusCreated, body, WithHeader("Location", location))
}

func WriteNoContent(w http.ResponseWriter, r *http.Request, opts ...ResponseOption) {
	WriteResponse(w, r, http.StatusNoContent, nil, opts...)
}

func WriteUnauthorized(w http.ResponseWriter, r *http.Request) {
	WriteResponse(w, r, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}

// WriteCommandError renders err with the status of its kind. Errors that are
// not a CommandError are treated as opaque storage failures.
func WriteCommandError(w http.ResponseWriter, r *http.Request, err error) {
	var commandErr CommandError
	if !errors.As(err, &commandErr) {
		commandErr = Storage(err, "unexpected error")
	}

	if commandErr.StatusCode >= http.StatusInternalServerError {
		LogError(r.Context(), "request failed", zap.Error(err))
	}

	WriteResponse(w, r, commandErr.StatusCode, commandErr)
}

func WriteResponse(
	w http.ResponseWriter,
	r *http.Request,
	statusCode int,
	body interface{},
	opts ...ResponseOption,
) {
	for _, opt := range opts {
		opt(w, r)
	}

	if body != nil {
		w.Header().Set("Content-Type", "application/json")
	}

	w.WriteHeader(statusCode)
	writeBodyIfPresent(r.Context(), w, body)
}

func writeBodyIfPresent(ctx context.Context, w http.ResponseWriter, body interface{}) {
	if body == nil {
		return
	}

	responseBytes, err := json.Marshal(body)
	if err != nil {
		LogError(ctx, "failed to serialize response", zap.Error(err))
		responseBytes = []byte(fmt.Sprintf(`{"error":%q}`, internalErrorMessage))
	}

	if _, err := w.Write(responseBytes); err != nil {
		LogError(ctx, "failed to write response", zap.Error(err))
	}
}
