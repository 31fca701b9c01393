package shape

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrPropertyType    = errors.New("property type mismatch")
)

// Schema properties are addressed by their json tag names, the same names
// documents and timelines use.

var fieldCache sync.Map // reflect.Type -> map[string]int

func propertyFields(t reflect.Type) map[string]int {
	if v, ok := fieldCache.Load(t); ok {
		return v.(map[string]int)
	}
	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = i
	}
	fieldCache.Store(t, fields)
	return fields
}

func schemaValue(s Schema) (reflect.Value, bool) {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.Kind() == reflect.Struct
}

// PropertyNames lists the properties of s, sorted.
func PropertyNames(s Schema) []string {
	v, ok := schemaValue(s)
	if !ok {
		return nil
	}
	fields := propertyFields(v.Type())
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Property returns the value of the named property. Pointers are
// dereferenced (nil yields nil) and integers are widened to float64, so
// callers see one representation per value kind.
func Property(s Schema, name string) (any, bool) {
	v, ok := schemaValue(s)
	if !ok {
		return nil, false
	}
	i, ok := propertyFields(v.Type())[name]
	if !ok {
		return nil, false
	}
	f := v.Field(i)
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return nil, true
		}
		f = f.Elem()
	}
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(f.Int()), true
	}
	return f.Interface(), true
}

// WithProperty returns a copy of s with the named property set to value.
// s itself is not modified. Values are converted where the conversion is
// lossless in meaning: T into *T, numbers across float and int kinds, and
// named string types from strings.
func WithProperty(s Schema, name string, value any) (Schema, error) {
	v, ok := schemaValue(s)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a schema struct", ErrPropertyType, s)
	}
	i, ok := propertyFields(v.Type())[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, s.Kind(), name)
	}

	out := reflect.New(v.Type()).Elem()
	out.Set(v)
	field := out.Field(i)

	converted, err := convertTo(field.Type(), value)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", s.Kind(), name, err)
	}
	field.Set(converted)
	return out.Interface().(Schema), nil
}

func convertTo(t reflect.Type, value any) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(value)

	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if t.Kind() == reflect.Pointer {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Zero(t), nil
			}
			v = v.Elem()
		}
		inner, err := convertTo(t.Elem(), v.Interface())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Zero(t), nil
		}
		return convertTo(t, v.Elem().Interface())
	}

	switch {
	case isFloat(t.Kind()) && isNumber(v.Kind()):
		return v.Convert(t), nil
	case isInt(t.Kind()) && isNumber(v.Kind()):
		n := v.Convert(reflect.TypeOf(float64(0))).Float()
		return reflect.ValueOf(int64(math.Round(n))).Convert(t), nil
	case t.Kind() == reflect.String && v.Kind() == reflect.String:
		return v.Convert(t), nil
	case v.Type().ConvertibleTo(t) && t.Kind() == v.Kind():
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %T as %s", ErrPropertyType, value, t)
}

func isFloat(k reflect.Kind) bool { return k == reflect.Float32 || k == reflect.Float64 }

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isNumber(k reflect.Kind) bool { return isFloat(k) || isInt(k) }
