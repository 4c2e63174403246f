package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anatolykoptev/go_career/internal/engine/career"
)

func (a *api) roadmap(c *fiber.Ctx) error {
	var p career.RoadmapParams
	if err := parseBody(c, &p); err != nil {
		return err
	}
	rm, err := career.GenerateRoadmap(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(rm)
}
