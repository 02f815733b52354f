package handler

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-review/internal/logging"
	"github.com/iliyamo/restaurant-review/internal/middleware"
	"github.com/iliyamo/restaurant-review/internal/queue"
	"github.com/iliyamo/restaurant-review/internal/repository"
	"github.com/iliyamo/restaurant-review/internal/service"
)

// NoticeDBUnavailable is shown when no database connection could be
// acquired for the request.
const NoticeDBUnavailable = "database unavailable"

// RequestValidator adapts validator/v10 to echo.Validator.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator reports fields by their json names.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i any) error { return rv.v.Struct(i) }

// base is embedded in every view record.
type base struct {
	Username string   `json:"username"`
	Notices  []string `json:"notices"`
}

func newBase(c echo.Context, notices ...string) base {
	if notices == nil {
		notices = []string{}
	}
	return base{Username: middleware.CurrentSession(c).DisplayName(), Notices: notices}
}

// store returns the repositories bound to the request connection.
func store(c echo.Context) (*repository.Store, bool) {
	conn, ok := middleware.Conn(c)
	if !ok {
		return nil, false
	}
	return repository.NewStore(conn), true
}

func unavailable(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service_unavailable", "message": NoticeDBUnavailable})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": msg})
}

func serverError(c echo.Context, op string, err error) error {
	logging.Error().Err(err).Str("op", op).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error", "message": op + " failed"})
}

// validationMessage turns the first validator failure into a short
// user-facing message.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid body"
	}
	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "eqfield":
		return "passwords do not match"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min", "max", "gte", "lte":
		return fe.Field() + " is out of range"
	}
	return fe.Field() + " is invalid"
}

// decode binds the request body into req and validates it. The error
// is suitable for validationMessage.
func decode(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func idParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// publish sends ev in the background. Broker failures never fail the
// request.
func publish(pub service.Publisher, ev queue.ActivityEvent) {
	if pub == nil {
		return
	}
	if ev.At == "" {
		ev.At = time.Now().UTC().Format(time.RFC3339)
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pub.PublishActivity(ctx, ev); err != nil {
			logging.Warn().Err(err).Str("kind", ev.Kind).Msg("activity publish failed")
		}
	}()
}
