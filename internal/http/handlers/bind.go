package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func BindJSON(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequest(ctx, bindErrorMessage(err, out))

		return false
	}

	return true
}

// bindErrorMessage flattens a bind failure into the single wire message.
// The first validator error wins, named by its json tag. Request bodies
// here are flat structs, so naming a field is a one-step tag lookup.
func bindErrorMessage(err error, out interface{}) string {
	var validatorErrors validator.ValidationErrors

	if errors.As(err, &validatorErrors) && len(validatorErrors) > 0 {
		first := validatorErrors[0]

		return jsonFieldName(out, first.StructField()) + " " + ruleMessage(first.Tag(), first.Param())
	}

	// bad json, truncated bodies included

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "Invalid JSON body"
	}

	var typeError *json.UnmarshalTypeError

	if errors.As(err, &typeError) {
		// the decoder already reports the offending key by its json name
		field := strings.TrimSpace(typeError.Field)

		if field == "" {
			return "Invalid JSON body"
		}

		return fmt.Sprintf("%s must be of type %s", field, typeError.Type.String())
	}

	if errors.Is(err, io.EOF) {
		return "Request body is required"
	}

	// final fallback if the error could not be deciphered
	return "Invalid request body"
}

// jsonFieldName resolves a struct field to the name clients sent it under.
func jsonFieldName(out interface{}, structField string) string {
	t := reflect.TypeOf(out)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}

	sf, ok := t.FieldByName(structField)

	if !ok {
		return structField
	}

	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")

	if name == "" || name == "-" {
		return structField
	}

	return name
}

func ruleMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + param
	case "min":
		return "must be at least " + param
	}

	if param != "" {
		return fmt.Sprintf("failed %s validation (%s)", rule, param)
	}

	return "failed " + rule + " validation"
}
