// Package apperr defines the API error taxonomy and the single writer that
// turns an error into an HTTP response.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Code struct {
	Kind   string
	Status int
}

var (
	CodeValidation      = Code{"validation", http.StatusUnprocessableEntity}
	CodeUnauthenticated = Code{"unauthenticated", http.StatusUnauthorized}
	CodeForbidden       = Code{"forbidden", http.StatusForbidden}
	CodeNotFound        = Code{"not_found", http.StatusNotFound}
	CodeBadRequest      = Code{"bad_request", http.StatusBadRequest}
	CodeInternal        = Code{"internal", http.StatusInternalServerError}
)

const (
	MsgValidation      = "Les données fournies sont invalides."
	MsgUnauthenticated = "Non authentifié"
	MsgNotFound        = "Ressource introuvable"
	MsgInternal        = "Erreur interne du serveur"
	MsgBadRequest      = "Requête invalide"
)

// Error is the error type every handler reports. Message is returned to
// the client; Err is the internal cause and is only logged.
type Error struct {
	Code    Code
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int { return e.Code.Status }

// Add records a message for field and returns e for chaining.
func (e *Error) Add(field, msg string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

func New(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Validation returns an empty 422 error; populate it with Add.
func Validation() *Error {
	return &Error{Code: CodeValidation, Message: MsgValidation, Fields: make(map[string][]string)}
}

// Field is a shorthand for a 422 error carrying a single field message.
func Field(field, msg string) *Error {
	return Validation().Add(field, msg)
}

func Unauthenticated() *Error {
	return &Error{Code: CodeUnauthenticated, Message: MsgUnauthenticated}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func NotFound() *Error {
	return &Error{Code: CodeNotFound, Message: MsgNotFound}
}

func BadRequest(msg string, err error) *Error {
	if msg == "" {
		msg = MsgBadRequest
	}
	return &Error{Code: CodeBadRequest, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// HasFields reports whether a validation error collected any message.
func (e *Error) HasFields() bool { return len(e.Fields) > 0 }

// Is matches on the error kind so callers can test with errors.Is(err, apperr.NotFound()).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Write renders err and aborts the gin context. Anything that is not an
// *Error is treated as an internal failure.
func Write(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal(MsgInternal, err)
	}

	if appErr.Code == CodeInternal {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("detail", appErr.Message),
			zap.Error(appErr.Err),
		)
		c.AbortWithStatusJSON(appErr.Status(), gin.H{"message": MsgInternal})
		return
	}

	body := gin.H{"message": appErr.Message}
	if appErr.Code == CodeValidation {
		fields := appErr.Fields
		if fields == nil {
			fields = map[string][]string{}
		}
		body["errors"] = fields
	}
	c.AbortWithStatusJSON(appErr.Status(), body)
}

var registerTagNames sync.Once

// UseJSONFieldNames makes gin's validator report fields by their json tag.
func UseJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// FromBinding converts a gin binding failure to the taxonomy: malformed
// JSON is a 400, field rule violations and type mismatches are a 422.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := Validation()
		for _, fe := range verrs {
			out.Add(fe.Field(), fieldMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			return BadRequest(MsgBadRequest, err)
		}
		return Field(field, fmt.Sprintf("Le champ %s a un type invalide.", field))
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	if errors.Is(err, io.EOF) {
		return BadRequest("Corps de requête vide", err)
	}
	return BadRequest(MsgBadRequest, err)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Le champ %s est obligatoire.", field)
	case "email":
		return fmt.Sprintf("Le champ %s doit être une adresse e-mail valide.", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Le champ %s doit contenir au moins %s caractères.", field, fe.Param())
		}
		return fmt.Sprintf("Le champ %s doit être au moins %s.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Le champ %s ne peut pas dépasser %s caractères.", field, fe.Param())
		}
		return fmt.Sprintf("Le champ %s ne peut pas dépasser %s.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("Le champ %s doit être supérieur ou égal à %s.", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("La confirmation du champ %s ne correspond pas.", field)
	case "oneof":
		return fmt.Sprintf("Le champ %s doit être l'une des valeurs : %s.", field, fe.Param())
	default:
		return fmt.Sprintf("Le champ %s est invalide.", field)
	}
}
