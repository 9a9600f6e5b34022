// Package flagx binds cobra flags to tagged struct fields
package flagx

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var durationType = reflect.TypeFor[time.Duration]()

// field one tagged struct field
//
//	Count  int           `flag:"count,n" usage:"resolutions to run" default:"100"`
//	Config string        `flag:"config-dir" usage:"configuration directory" required:"true"`
//	Wait   time.Duration `flag:"wait" default:"1s"`
type field struct {
	index      int
	name       string
	short      string
	usage      string
	defaultVal string
	required   bool
	typ        reflect.Type
}

// fields returns the tagged fields of a struct pointer
func fields(target any) (reflect.Value, []field, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("target must be a pointer to struct, got %T", target)
	}
	v = v.Elem()

	var out []field
	for i := range v.NumField() {
		sf := v.Type().Field(i)
		tag := sf.Tag.Get("flag")
		if tag == "" || !sf.IsExported() {
			continue
		}
		name, short, _ := strings.Cut(tag, ",")
		out = append(out, field{
			index:      i,
			name:       name,
			short:      short,
			usage:      sf.Tag.Get("usage"),
			defaultVal: sf.Tag.Get("default"),
			required:   sf.Tag.Get("required") == "true",
			typ:        sf.Type,
		})
	}
	return v, out, nil
}

// BindFlags registers one flag per tagged field of target
func BindFlags(cmd *cobra.Command, target any) error {
	_, fs, err := fields(target)
	if err != nil {
		return err
	}

	for _, f := range fs {
		if err := register(cmd, f); err != nil {
			return err
		}
		if f.required {
			if err := cmd.MarkFlagRequired(f.name); err != nil {
				return err
			}
		}
	}
	return nil
}

func register(cmd *cobra.Command, f field) error {
	flags := cmd.Flags()

	if f.typ == durationType {
		def, err := parseDefault(f, time.ParseDuration)
		if err != nil {
			return err
		}
		flags.DurationP(f.name, f.short, def, f.usage)
		return nil
	}

	switch f.typ.Kind() {
	case reflect.String:
		flags.StringP(f.name, f.short, f.defaultVal, f.usage)
	case reflect.Int:
		def, err := parseDefault(f, strconv.Atoi)
		if err != nil {
			return err
		}
		flags.IntP(f.name, f.short, def, f.usage)
	case reflect.Bool:
		def, err := parseDefault(f, strconv.ParseBool)
		if err != nil {
			return err
		}
		flags.BoolP(f.name, f.short, def, f.usage)
	case reflect.Slice:
		if f.typ.Elem().Kind() != reflect.String {
			return fmt.Errorf("flag %s: unsupported slice element type %s", f.name, f.typ.Elem())
		}
		var def []string
		if f.defaultVal != "" {
			def = strings.Split(f.defaultVal, ",")
		}
		flags.StringSliceP(f.name, f.short, def, f.usage)
	default:
		return fmt.Errorf("flag %s: unsupported field type %s", f.name, f.typ)
	}
	return nil
}

func parseDefault[T any](f field, parse func(string) (T, error)) (T, error) {
	if f.defaultVal == "" {
		var zero T
		return zero, nil
	}
	v, err := parse(f.defaultVal)
	if err != nil {
		return v, fmt.Errorf("flag %s: bad default %q: %w", f.name, f.defaultVal, err)
	}
	return v, nil
}

// ParseFlags copies flag values into the tagged fields of target.
// Flags missing from cmd are an error.
//
//	var req resolveRequest
//	if err := flagx.ParseFlags(cmd, &req); err != nil {
//	    return err
//	}
func ParseFlags(cmd *cobra.Command, target any) error {
	v, fs, err := fields(target)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	for _, f := range fs {
		dst := v.Field(f.index)
		var val any

		switch {
		case f.typ == durationType:
			val, err = flags.GetDuration(f.name)
		case f.typ.Kind() == reflect.String:
			val, err = flags.GetString(f.name)
		case f.typ.Kind() == reflect.Int:
			val, err = flags.GetInt(f.name)
		case f.typ.Kind() == reflect.Bool:
			val, err = flags.GetBool(f.name)
		case f.typ.Kind() == reflect.Slice && f.typ.Elem().Kind() == reflect.String:
			val, err = flags.GetStringSlice(f.name)
		default:
			return fmt.Errorf("flag %s: unsupported field type %s", f.name, f.typ)
		}
		if err != nil {
			return fmt.Errorf("flag %s: %w", f.name, err)
		}

		dst.Set(reflect.ValueOf(val).Convert(f.typ))
	}
	return nil
}
