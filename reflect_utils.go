package kata

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct
// field's external key used by BindStruct.
// Priority: kata:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("kata"); gt != "" {
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// BindStruct copies a decoded object into a struct of type T. Keys are
// resolved per ResolveStructKey; unexported fields and fields whose key
// resolves to "-" are skipped, and absent or null keys leave the field at its
// zero value. Mismatched value types are reported as invalid_type issues at
// the field's JSON Pointer path.
func BindStruct[T any](m map[string]any) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if rv.Kind() != reflect.Struct {
		return out, Issues{{Path: "/", Code: CodeInvalidType,
			Message: fmt.Sprintf("bind target must be a struct, got %s", rv.Kind())}}
	}
	rt := rv.Type()
	var iss Issues
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		raw, ok := m[key]
		if !ok || raw == nil {
			continue
		}
		if err := bindField(rv.Field(i), raw); err != nil {
			iss = AppendIssues(iss, Issue{Path: bindFieldPath(key), Code: CodeInvalidType,
				Message: err.Error(), Params: map[string]any{"field": sf.Name}})
		}
	}
	if len(iss) > 0 {
		return out, iss
	}
	return out, nil
}

func bindField(fv reflect.Value, raw any) error {
	if n, ok := raw.(json.Number); ok {
		switch {
		case fv.CanInt():
			i, err := n.Int64()
			if err != nil {
				return fmt.Errorf("cannot bind number %q into %s", n, fv.Type())
			}
			fv.SetInt(i)
			return nil
		case fv.CanFloat():
			f, err := n.Float64()
			if err != nil {
				return fmt.Errorf("cannot bind number %q into %s", n, fv.Type())
			}
			fv.SetFloat(f)
			return nil
		}
	}
	val := reflect.ValueOf(raw)
	switch {
	case val.Type().AssignableTo(fv.Type()):
		fv.Set(val)
	case val.CanInt() && fv.CanInt():
		fv.SetInt(val.Int())
	case val.CanInt() && fv.CanFloat():
		fv.SetFloat(float64(val.Int()))
	case val.CanFloat() && fv.CanFloat():
		fv.SetFloat(val.Float())
	default:
		return fmt.Errorf("cannot bind %T into %s", raw, fv.Type())
	}
	return nil
}

func bindFieldPath(key string) string {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	return "/" + strings.ReplaceAll(strings.ReplaceAll(key, "~", "~0"), "/", "~1")
}
