package handlers

import (
	"log"
	"strconv"

	"github.com/David-999-david/man-app-server/services"
	"github.com/David-999-david/man-app-server/utils"

	"github.com/gofiber/fiber/v2"
)

// jsonFromError is the one place a service failure becomes an HTTP response.
// Internal and delivery failures are logged with their cause; the client only
// ever sees the safe message.
func jsonFromError(c *fiber.Ctx, err error) error {
	svcErr := services.AsError(err)

	status := svcErr.HTTPStatus()
	if status >= fiber.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Method(), c.Path(), svcErr)
	}

	return utils.JSONError(c, status, svcErr.Message, nil)
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
