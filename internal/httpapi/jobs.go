package httpapi

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/anatolykoptev/go_career/internal/engine/career"
)

// listJobs serves ?q=&band=&resumeId=&live=&location=. resumeId ranks the
// listings against the skills of a stored analysis.
func (a *api) listJobs(c *fiber.Ctx) error {
	var resumeText string
	if id := c.Query("resumeId"); id != "" {
		e, err := career.GetHistory(c.UserContext(), id)
		if err != nil {
			return err
		}
		resumeText = strings.Join(e.Results.Skills, " ")
	}
	band := career.MatchBand(strings.ToLower(c.Query("band")))

	if live, _ := strconv.ParseBool(c.Query("live")); live {
		jobs, err := career.SearchLive(c.UserContext(), c.Query("q"), c.Query("location"), resumeText)
		if err != nil {
			return err
		}
		return c.JSON(career.FilterByBand(jobs, band))
	}
	return c.JSON(career.ListRecommendations(c.UserContext(), c.Query("q"), band, resumeText))
}

func (a *api) toggleSavedJob(c *fiber.Ctx) error {
	id := c.Params("id")
	saved, err := career.ToggleSavedJob(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id, "saved": saved})
}

func (a *api) savedJobs(c *fiber.Ctx) error {
	ids, err := career.SavedJobs(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ids)
}
