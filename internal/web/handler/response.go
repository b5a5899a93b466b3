package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// Failure is the body of every failed response.
type Failure struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var statusByKind = map[roles.Kind]int{ //nolint:gochecknoglobals
	roles.KindNotFound:       fiber.StatusNotFound,
	roles.KindValidation:     fiber.StatusBadRequest,
	roles.KindInvalidFilter:  fiber.StatusBadRequest,
	roles.KindCycle:          fiber.StatusConflict,
	roles.KindDuplicateEdge:  fiber.StatusConflict,
	roles.KindConflict:       fiber.StatusConflict,
	roles.KindTransient:      fiber.StatusServiceUnavailable,
	roles.KindNotImplemented: fiber.StatusNotImplemented,
}

// OK writes data with status 200.
func OK(c fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Data: data, Message: message})
}

// Created writes data with status 201.
func Created(c fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Data: data, Message: message})
}

// Status returns the HTTP status for err.
func Status(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	if status, ok := statusByKind[roles.KindOf(err)]; ok {
		return status
	}

	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error returned by a handler as a Failure.
// Internal errors are logged and their details are not sent to the client.
func ErrorHandler(c fiber.Ctx, err error) error {
	status := Status(err)
	kind := string(roles.KindOf(err))
	message := err.Error()

	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind = "http"
		message = fe.Message
	}

	if kind == string(roles.KindInternal) {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("request failed")

		message = "internal error"
	}

	if status == fiber.StatusServiceUnavailable {
		c.Set(fiber.HeaderRetryAfter, "1")
	}

	return c.Status(status).JSON(Failure{Error: kind, Message: message})
}
