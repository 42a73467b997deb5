package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tastebud/internal/apperr"
	"tastebud/internal/validation"
)

// respond writes the uniform success envelope. The message slot carries
// either a human-readable string or the response payload itself.
func respond(c *fiber.Ctx, status int, message interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"message": message,
	})
}

// respondErr translates any error into the error envelope. Internal failures
// log the underlying cause but never leak it to the client.
func respondErr(c *fiber.Ctx, err error) error {
	e := apperr.Coerce(err)
	if e.Kind == apperr.KindInternal {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(e.Kind.Status()).JSON(fiber.Map{
		"status":  "error",
		"message": e.Message,
	})
}

// parseBody decodes the JSON request body into out, mapping malformed input
// to a 400 instead of an internal error.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	return nil
}

// paramID parses a numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return uint(id), nil
}

// listQuery builds pagination input from the query string. Defaults and caps
// are applied by the list validator inside the service.
func listQuery(c *fiber.Ctx) *validation.ListPayload {
	return &validation.ListPayload{
		Offset: c.QueryInt("offset"),
		Limit:  c.QueryInt("limit"),
		Filter: c.Query("filter"),
	}
}
