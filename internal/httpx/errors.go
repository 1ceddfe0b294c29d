package httpx

import (
	"errors"
	"log/slog"

	"interiors-erp/internal/apperr"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	pgFKViolation     = "23503"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// ErrorHandler renders every error returned by a handler as the
// {success:false, error, details?} envelope. Internal error text is only
// exposed when exposeInternal is set (non-production).
func ErrorHandler(log *slog.Logger, exposeInternal bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("unhandled error",
				"request_id", c.Locals("requestid"),
				"method", c.Method(),
				"path", c.Path(),
				"err", err,
			)
			if exposeInternal {
				body.Details = err.Error()
			}
		}
		return c.Status(status).JSON(body)
	}
}

func classify(err error) (int, errorBody) {
	body := errorBody{Success: false}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body.Error = appErr.Message
		body.Details = appErr.Details
		return statusForKind(appErr.Kind), body
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		body.Error = fe.Message
		return fe.Code, body
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		body.Error = "validation failed"
		body.Details = verrs
		return fiber.StatusBadRequest, body
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		body.Error = "record not found"
		return fiber.StatusNotFound, body
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			body.Error = "a record with the same unique value already exists"
			return fiber.StatusConflict, body
		case pgCheckViolation:
			body.Error = "the change violates a data constraint"
			return fiber.StatusBadRequest, body
		case pgFKViolation:
			body.Error = "the record is still referenced by other records"
			return fiber.StatusConflict, body
		}
	}

	body.Error = "unexpected server error"
	return fiber.StatusInternalServerError, body
}

func statusForKind(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
