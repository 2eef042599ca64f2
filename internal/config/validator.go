package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/routekit/internal/plugin"
	"github.com/alexisbeaulieu97/routekit/internal/routing"
	routekiterrors "github.com/alexisbeaulieu97/routekit/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("plugin_id", func(fl validator.FieldLevel) bool {
			return plugin.ValidateID(fl.Field().String()) == nil
		})

		_ = v.RegisterValidation("route_pattern", func(fl validator.FieldLevel) bool {
			_, err := routing.CompilePattern(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("conflict_policy", func(fl validator.FieldLevel) bool {
			_, err := plugin.ParseConflictPolicy(fl.Field().String())
			return err == nil
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns the shared validator for use outside the config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}

// ValidateManifest performs schema and cross-route validation on a manifest.
func ValidateManifest(m *Manifest) error {
	if m == nil {
		return routekiterrors.NewValidationError("manifest", "manifest is nil", nil)
	}

	if err := validatorInstance().Struct(m); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]int, len(m.Routes))
	for i, r := range m.Routes {
		pattern, err := routing.CompilePattern(r.Pattern)
		if err != nil {
			return routekiterrors.NewValidationError(fieldForRoute(i, "pattern"), err.Error(), err)
		}
		if first, ok := seen[pattern.String()]; ok {
			return routekiterrors.NewValidationError(
				fieldForRoute(i, "pattern"),
				fmt.Sprintf("pattern %q duplicates routes[%d]", r.Pattern, first),
				nil,
			)
		}
		seen[pattern.String()] = i
	}

	return nil
}

// ValidateConfig performs schema validation on the host configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return routekiterrors.NewValidationError("config", "configuration is nil", nil)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	return nil
}
