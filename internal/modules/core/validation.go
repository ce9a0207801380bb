package core

import (
	"context"
	"strings"

	"github.com/eskrenkovic/mediator-go"
)

type Validator interface {
	Validate() error
}

type ValidationError struct {
	ValidationErrors []error
}

func (e ValidationError) Error() string {
	messages := Map(e.ValidationErrors, func(err error) string {
		return err.Error()
	})
	return strings.Join(messages, "; ")
}

// Collect returns nil when no errors were collected.
func (e ValidationError) Collect() error {
	if len(e.ValidationErrors) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Add(err error) {
	if err != nil {
		e.ValidationErrors = append(e.ValidationErrors, err)
	}
}

var _ mediator.PipelineBehavior = (*RequestValidationBehavior)(nil)

type RequestValidationBehavior struct{}

func (b *RequestValidationBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	if request, ok := request.(Validator); ok {
		if err := request.Validate(); err != nil {
			return nil, Validation(err)
		}
	}

	return next(ctx, request)
}
