package handlers

import "github.com/gofiber/fiber/v2"

// errBody is the error envelope every endpoint shares: a human message plus
// optional per-field details. Clients key off this shape.
type errBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errBody{Message: message})
}

func failFields(c *fiber.Ctx, status int, message string, fields map[string]string) error {
	return c.Status(status).JSON(errBody{Message: message, Errors: fields})
}
