package handlers

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// decodeBody parses the request body as a JSON object with the app's decoder.
// An empty body is treated as an empty object.
func decodeBody(c *fiber.Ctx) (map[string]any, error) {
	payload := map[string]any{}
	body := c.Body()
	if len(body) == 0 {
		return payload, nil
	}
	if err := c.App().Config().JSONDecoder(body, &payload); err != nil {
		return nil, apperrors.NewMalformedBody(err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}
