package domain

import (
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
	"unicode"
)

// Into projects the row onto dst, which must be a pointer to a struct.
// Columns are matched to fields by `db:"name"` tag, then by field name
// ignoring case, then by the field name in snake_case. A column without a
// matching field fails with ErrUnknownField; fields without a column keep
// their zero value.
func (r Row) Into(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: want pointer to struct, got %T", ErrInvalidTarget, dst)
	}
	return r.assign(v.Elem(), fieldsOf(v.Elem().Type()))
}

// Into projects every row onto dst, which must be a pointer to a slice of
// structs or of struct pointers. Row order is preserved.
func (s RowSet) Into(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("%w: want pointer to slice, got %T", ErrInvalidTarget, dst)
	}

	slice := v.Elem()
	elemType := slice.Type().Elem()
	isPtr := elemType.Kind() == reflect.Pointer
	structType := elemType
	if isPtr {
		structType = elemType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return fmt.Errorf("%w: want slice of structs, got %s", ErrInvalidTarget, slice.Type())
	}

	fields := fieldsOf(structType)
	out := reflect.MakeSlice(slice.Type(), 0, len(s))
	for i, row := range s {
		elem := reflect.New(structType)
		if err := row.assign(elem.Elem(), fields); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if isPtr {
			out = reflect.Append(out, elem)
		} else {
			out = reflect.Append(out, elem.Elem())
		}
	}
	slice.Set(out)
	return nil
}

// Scan projects a row onto a new value of type T.
func Scan[T any](r Row) (T, error) {
	var out T
	err := r.Into(&out)
	return out, err
}

// ScanAll projects every row of a set onto a new slice of T.
func ScanAll[T any](s RowSet) ([]T, error) {
	var out []T
	if err := s.Into(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r Row) assign(target reflect.Value, fields fieldIndex) error {
	for i, col := range r.columns {
		path, ok := fields.lookup(col)
		if !ok {
			return fmt.Errorf("%w %q in %s", ErrUnknownField, col, target.Type())
		}
		field := target.FieldByIndex(path)
		if err := setField(field, r.values[i]); err != nil {
			return fmt.Errorf("column %q: %w", col, err)
		}
	}
	return nil
}

// fieldIndex maps column keys to struct field index paths.
type fieldIndex struct {
	tagged map[string][]int
	names  map[string][]int
}

func (f fieldIndex) lookup(column string) ([]int, bool) {
	if path, ok := f.tagged[column]; ok {
		return path, true
	}
	path, ok := f.names[strings.ToLower(column)]
	return path, ok
}

func fieldsOf(t reflect.Type) fieldIndex {
	idx := fieldIndex{tagged: map[string][]int{}, names: map[string][]int{}}
	collectFields(t, nil, idx)
	return idx
}

func collectFields(t reflect.Type, parent []int, idx fieldIndex) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		path := append(append([]int(nil), parent...), i)

		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct && tag == "" {
			collectFields(f.Type, path, idx)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if tag != "" {
			idx.tagged[tag] = path
			continue
		}
		for _, key := range []string{strings.ToLower(f.Name), snakeCase(f.Name)} {
			if _, taken := idx.names[key]; !taken {
				idx.names[key] = path
			}
		}
	}
}

func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

func setField(field reflect.Value, value any) error {
	if field.CanAddr() && field.Addr().Type().Implements(scannerType) {
		return field.Addr().Interface().(sql.Scanner).Scan(value)
	}

	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := setField(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	src := reflect.ValueOf(value)
	switch {
	case src.Type().AssignableTo(field.Type()):
		field.Set(src)
		return nil
	case field.Kind() == reflect.Bool && src.CanInt():
		field.SetBool(src.Int() != 0)
		return nil
	case field.Kind() == reflect.String && src.Type() == timeType:
		field.SetString(FormatTimestamp(value.(time.Time)))
		return nil
	case isNumeric(field.Kind()) && isNumeric(src.Kind()):
		return setNumber(field, src)
	case field.Kind() == reflect.String && src.Kind() != reflect.String && src.Kind() != reflect.Slice:
		// Go converts integers to strings as runes; refuse instead.
		return fmt.Errorf("cannot assign %T to %s", value, field.Type())
	case src.Type().ConvertibleTo(field.Type()):
		field.Set(src.Convert(field.Type()))
		return nil
	default:
		return fmt.Errorf("cannot assign %T to %s", value, field.Type())
	}
}

var timeType = reflect.TypeOf(time.Time{})

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

// setNumber converts between numeric kinds and fails instead of wrapping,
// truncating or dropping a sign.
func setNumber(field, src reflect.Value) error {
	fail := func() error {
		return fmt.Errorf("cannot assign %v (%s) to %s", src.Interface(), src.Type(), field.Type())
	}

	switch k := field.Kind(); {
	case isInt(k):
		switch {
		case src.CanInt():
			if field.OverflowInt(src.Int()) {
				return fail()
			}
			field.SetInt(src.Int())
		case src.CanUint():
			if src.Uint() > math.MaxInt64 || field.OverflowInt(int64(src.Uint())) {
				return fail()
			}
			field.SetInt(int64(src.Uint()))
		default:
			f := src.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || field.OverflowInt(int64(f)) {
				return fail()
			}
			field.SetInt(int64(f))
		}
	case isUint(k):
		switch {
		case src.CanInt():
			if src.Int() < 0 || field.OverflowUint(uint64(src.Int())) {
				return fail()
			}
			field.SetUint(uint64(src.Int()))
		case src.CanUint():
			if field.OverflowUint(src.Uint()) {
				return fail()
			}
			field.SetUint(src.Uint())
		default:
			f := src.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || field.OverflowUint(uint64(f)) {
				return fail()
			}
			field.SetUint(uint64(f))
		}
	default:
		var f float64
		switch {
		case src.CanInt():
			f = float64(src.Int())
		case src.CanUint():
			f = float64(src.Uint())
		default:
			f = src.Float()
		}
		if field.OverflowFloat(f) {
			return fail()
		}
		field.SetFloat(f)
	}
	return nil
}
