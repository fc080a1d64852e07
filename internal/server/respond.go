package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const internalError = "Internal Server Error"

type errorBody struct {
	Error string `json:"error"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respond(w, r, status, errorBody{Error: message})
}

// validationMessage renders validator errors as one line, e.g. "field Email is not a valid email".
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s is not a valid email", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s", fe.Field(), fe.Param()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", fe.Field()))
		}
	}

	return strings.Join(msgs, ", ")
}
