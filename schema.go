package main

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// jsonschemaForExt builds a JSON Schema for T and enriches property schemas
// with defaults from `default` struct tags, which the base generator ignores.
func jsonschemaForExt[T any]() *jsonschema.Schema {
	sch, err := jsonschema.For[T](nil)
	if err != nil {
		panic(err)
	}

	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic("jsonschemaForExt requires a struct type")
	}

	if sch.Properties == nil {
		sch.Properties = make(map[string]*jsonschema.Schema)
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		def := f.Tag.Get("default")
		if def == "" {
			continue
		}

		name := propertyName(f)
		if name == "" {
			continue
		}
		p, ok := sch.Properties[name]
		if !ok || p == nil {
			p = &jsonschema.Schema{}
			sch.Properties[name] = p
		}
		p.Default = encodeDefault(def)
	}

	return sch
}

func propertyName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name
}

// encodeDefault turns a tag literal into JSON: numbers and booleans pass
// through raw, everything else becomes a string.
func encodeDefault(def string) json.RawMessage {
	if _, err := strconv.ParseInt(def, 10, 64); err == nil {
		return json.RawMessage(def)
	}
	if _, err := strconv.ParseFloat(def, 64); err == nil {
		return json.RawMessage(def)
	}
	if def == "true" || def == "false" {
		return json.RawMessage(def)
	}
	b, _ := json.Marshal(def)
	return json.RawMessage(b)
}
