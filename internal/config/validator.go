package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func getStructValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())

		// Report yaml names so errors point into the config file.
		structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = structValidator.RegisterValidation("listen_addr", validateListenAddr)
	})
	return structValidator
}

// validateListenAddr accepts host:port listen addresses. The host may be
// empty and port 0 selects an ephemeral port.
func validateListenAddr(fl validator.FieldLevel) bool {
	return isListenAddr(fl.Field().String())
}

func isListenAddr(addr string) bool {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 0 && n <= 65535
}

// ValidateConfig validates a configuration. All problems are reported at
// once in a *util.ValidationError.
func ValidateConfig(cfg *Config) error {
	verr := util.NewValidationError("invalid configuration")

	if cfg == nil {
		verr.AddField("", "configuration is nil")
		return verr
	}

	if err := getStructValidator().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return util.WrapError(err, "failed to validate configuration")
		}
		for _, fe := range fieldErrs {
			verr.AddField(fieldPath(fe), tagMessage(fe))
		}
	}

	validateEntityTypes(cfg, verr)
	validateResourceTypes(cfg, verr)
	validateFixtures(cfg, verr)

	if cfg.Cache.Enabled && cfg.Cache.Type == CacheTypeRedis && cfg.Cache.Redis == nil {
		verr.AddField("cache.redis", "is required when cache.type is redis")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// fieldPath strips the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	case "listen_addr":
		return "must be a host:port address"
	case "uuid":
		return "must be a UUID"
	case "min":
		return "must have at least " + fe.Param() + " element(s)"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

func validateEntityTypes(cfg *Config, verr *util.ValidationError) {
	seen := make(map[string]bool, len(cfg.EntityTypes))

	for i, et := range cfg.EntityTypes {
		path := fmt.Sprintf("entityTypes[%d]", i)

		if et.ID != "" {
			if seen[et.ID] {
				verr.AddField(path+".id", fmt.Sprintf("duplicate entity type %q", et.ID))
			}
			seen[et.ID] = true
		}

		for rel, tmpl := range et.LinkTemplates {
			field := path + ".linkTemplates." + rel
			if !strings.HasPrefix(tmpl, "/") {
				verr.AddField(field, "must start with \"/\"")
			}
		}

		if tmpl, ok := et.CanonicalTemplate(); ok && et.ID != "" {
			if !strings.Contains(tmpl, "{"+et.ID+"}") {
				verr.AddField(path+".linkTemplates.canonical",
					fmt.Sprintf("must contain the {%s} placeholder", et.ID))
			}
		}
	}
}

func validateResourceTypes(cfg *Config, verr *util.ValidationError) {
	names := make(map[string]string)

	// Default names of bundles that are not overridden must not collide
	// with overrides either.
	overridden := make(map[string]bool)
	for _, rt := range cfg.JSONAPI.ResourceTypes {
		overridden[rt.EntityType+"--"+rt.Bundle] = true
	}
	for _, et := range cfg.EntityTypes {
		for _, b := range et.Bundles {
			key := et.ID + "--" + b
			if !overridden[key] {
				names[key] = key
			}
		}
	}

	for i, rt := range cfg.JSONAPI.ResourceTypes {
		path := fmt.Sprintf("jsonapi.resourceTypes[%d]", i)

		if !hasBundle(cfg, rt.EntityType, rt.Bundle) {
			verr.AddField(path, fmt.Sprintf("unknown bundle %s:%s", rt.EntityType, rt.Bundle))
		}
		if strings.Contains(rt.Name, "/") {
			verr.AddField(path+".name", "must not contain \"/\"")
		}

		key := rt.EntityType + "--" + rt.Bundle
		if owner, ok := names[rt.Name]; ok && owner != key {
			verr.AddField(path+".name", fmt.Sprintf("resource type name %q already used by %s", rt.Name, owner))
		}
		names[rt.Name] = key
	}
}

func validateFixtures(cfg *Config, verr *util.ValidationError) {
	for i, f := range cfg.Fixtures {
		if f.EntityType == "" || f.Bundle == "" {
			continue
		}
		if !hasBundle(cfg, f.EntityType, f.Bundle) {
			verr.AddField(fmt.Sprintf("fixtures[%d]", i),
				fmt.Sprintf("unknown bundle %s:%s", f.EntityType, f.Bundle))
		}
	}
}

func hasBundle(cfg *Config, typeID, bundle string) bool {
	for _, et := range cfg.EntityTypes {
		if et.ID == typeID {
			return slices.Contains(et.Bundles, bundle)
		}
	}
	return false
}
