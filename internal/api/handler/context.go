package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskly/task-tracker/internal/api/middleware"
	"github.com/taskly/task-tracker/internal/core/domain"
)

// identity returns the caller installed by the Auth middleware. A route
// wired without the middleware fails closed with 401.
func identity(c echo.Context) (domain.Identity, error) {
	id, ok := c.Get(middleware.IdentityKey).(domain.Identity)
	if !ok || id.UserID <= 0 {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return id, nil
}

// parseTaskID parses the :id path parameter. Anything that cannot name an
// existing task is reported as not found.
func parseTaskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrTaskNotFound
	}
	return id, nil
}

// bind decodes the JSON body into dst. Type mismatches become validation
// errors naming the offending field; other 400s from the binder become a
// generic invalid-body error. Non-400 binder errors such as 415 pass through.
func bind(c echo.Context, dst any) error {
	err := c.Bind(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.NewValidationError(typeErr.Field, typeErr.Field+" must be "+jsonKind(typeErr.Type))
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code != http.StatusBadRequest {
		return he
	}
	return domain.NewValidationError("", "request body must be a valid JSON object")
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "of a different type"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Pointer:
		return jsonKind(t.Elem())
	default:
		return "of a different type"
	}
}
