package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	routekiterrors "github.com/alexisbeaulieu97/routekit/pkg/errors"
)

// convertValidationError normalizes validator errors into routekit validation errors.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return routekiterrors.NewValidationError(field, msg, err)
	}

	return routekiterrors.NewValidationError("config", err.Error(), err)
}

// yamlishFieldName drops the root struct name, leaving the yaml path
// (for example "routes[0].pattern").
func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func fieldForRoute(index int, field string) string {
	return fmt.Sprintf("routes[%d].%s", index, field)
}
