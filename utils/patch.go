package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// UpdatesFromPtrDTO collects the non-nil pointer fields of a partial-update
// DTO into a column map for gorm Updates. Column names come from the json
// tag; renames overrides individual names when the wire name differs from
// the column.
func UpdatesFromPtrDTO(dto any, renames map[string]string) map[string]any {
	updates := make(map[string]any)
	v := reflect.ValueOf(dto)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return updates
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() != reflect.Ptr || field.IsNil() {
			continue
		}
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if alt := renames[name]; alt != "" {
			name = alt
		}
		updates[name] = field.Elem().Interface()
	}
	return updates
}

// ParseIntDefault reads a non-negative int from a query value, falling back
// to def on anything unparseable.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
