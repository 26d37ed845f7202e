package keymap

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
)

var bindingType = reflect.TypeOf(key.Binding{})

// ApplyOverrides rebinds the key.Binding fields of the struct km points to.
// A field named SetHotkey is matched by the override "set_hotkey"; fields
// of embedded structs such as Base are matched the same way. The help text
// switches to the first replacement key and a disabled binding stays
// disabled. Non-pointers and empty key lists are ignored.
func ApplyOverrides(km interface{}, overrides Overrides) {
	if len(overrides) == 0 {
		return
	}
	v := reflect.ValueOf(km)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	for name, field := range bindingFields(v.Elem()) {
		keys := overrides[name]
		if len(keys) == 0 {
			continue
		}
		current := field.Interface().(key.Binding)
		next := key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(keys[0], current.Help().Desc),
		)
		next.SetEnabled(current.Enabled())
		field.Set(reflect.ValueOf(next))
	}
}

// bindingFields indexes the settable bindings of v by snake_case name.
func bindingFields(v reflect.Value) map[string]reflect.Value {
	out := make(map[string]reflect.Value)
	var walk func(reflect.Value)
	walk = func(v reflect.Value) {
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field, sf := v.Field(i), t.Field(i)
			switch {
			case !field.CanSet():
			case sf.Anonymous && field.Kind() == reflect.Struct:
				walk(field)
			case sf.Type == bindingType:
				out[camelToSnake(sf.Name)] = field
			}
		}
	}
	walk(v)
	return out
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
