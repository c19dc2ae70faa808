package configtest

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// CheckYAMLTags walks a config type and reports fields that would break the
// defaults overlay in config.NewConfig: missing yaml names, or non-bool
// fields without omitempty.
func CheckYAMLTags(config any) error {
	return checkYAMLTags(reflect.TypeOf(config), map[reflect.Type]struct{}{})
}

func checkYAMLTags(t reflect.Type, seen map[reflect.Type]struct{}) error {
	if _, ok := seen[t]; ok {
		return nil
	}
	seen[t] = struct{}{}

	switch t.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.Pointer:
		return checkYAMLTags(t.Elem(), seen)
	case reflect.Struct:
		if t.PkgPath() == "time" {
			return nil
		}

		var errs error
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}

			tag, ok := field.Tag.Lookup("yaml")
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("%s.%s missing yaml tag", t.Name(), field.Name))
				continue
			}

			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			inline := slices.Contains(parts, "inline")
			if inline {
				// embedded configs from other modules follow their own conventions
				if field.Type.PkgPath() != t.PkgPath() {
					continue
				}
			} else if parts[0] == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s.%s has an empty yaml name", t.Name(), field.Name))
			}

			if field.Type.Kind() != reflect.Bool && !inline && !slices.Contains(parts, "omitempty") {
				errs = multierr.Append(errs, fmt.Errorf("%s.%s missing omitempty tag", t.Name(), field.Name))
			}

			errs = multierr.Append(errs, checkYAMLTags(field.Type, seen))
		}
		return errs
	default:
		return nil
	}
}
