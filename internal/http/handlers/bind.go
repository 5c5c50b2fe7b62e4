package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/geocoder89/courseapi/internal/http/respond"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	MsgInvalidJSON  = "Request body must be valid JSON"
	MsgBodyTooLarge = "Request body is too large"
)

// BindJSON decodes the body into out. An empty body decodes as {} so the
// domain validation reports every missing field. Field rules are not checked
// here.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	if ctx.Request.Body == nil {
		return true
	}

	err := ctx.ShouldBindBodyWith(out, binding.JSON)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	respond.Abort(ctx, apierr.BadRequest(bindErrorMessage(err, out)))
	return false
}

func bindErrorMessage(err error, out interface{}) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return MsgBodyTooLarge
	}

	// in the event of a type mismatch
	var unmatchedTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmatchedTypeError) {
		field := jsonPathFromDotPath(baseStructType(out), unmatchedTypeError.Field)
		if field == "" {
			return MsgInvalidJSON
		}
		return fmt.Sprintf("%s must be of type %s", field, jsonTypeName(unmatchedTypeError.Type))
	}

	return MsgInvalidJSON
}

func jsonTypeName(t reflect.Type) string {
	t = unwindPointer(t)
	if t == nil {
		return "unknown"
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

func baseStructType(v interface{}) reflect.Type {
	t := unwindPointer(reflect.TypeOf(v))

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func unwindPointer(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func jsonPathFromDotPath(rootType reflect.Type, dotPath string) string {
	dotPath = strings.TrimSpace(dotPath)
	if dotPath == "" {
		return ""
	}

	return mapStructPathToJSONPath(rootType, strings.Split(dotPath, "."))
}

// encoding/json reports Go field names in UnmarshalTypeError.Field; map them
// back to the names clients send.
func mapStructPathToJSONPath(rootType reflect.Type, parts []string) string {
	current := rootType
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		jsonName := part
		var nextType reflect.Type

		if current = unwindPointer(current); current != nil && current.Kind() == reflect.Struct {
			if sf, ok := fieldByNameOrTag(current, part); ok {
				jsonName = jsonNameFromStructField(sf)
				nextType = sf.Type
			}
		}

		out = append(out, jsonName)
		current = nextType
	}

	return strings.Join(out, ".")
}

func fieldByNameOrTag(t reflect.Type, name string) (reflect.StructField, bool) {
	if sf, ok := t.FieldByName(name); ok {
		return sf, true
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if jsonNameFromStructField(sf) == name {
			return sf, true
		}
	}
	return reflect.StructField{}, false
}

func jsonNameFromStructField(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}
