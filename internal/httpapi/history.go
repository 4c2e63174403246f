package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anatolykoptev/go_career/internal/engine/career"
)

func (a *api) listHistory(c *fiber.Ctx) error {
	res, err := career.ListHistory(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (a *api) getHistory(c *fiber.Ctx) error {
	e, err := career.GetHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (a *api) deleteHistory(c *fiber.Ctx) error {
	if err := career.DeleteHistory(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *api) clearHistory(c *fiber.Ctx) error {
	if err := career.ClearHistory(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *api) historyReport(c *fiber.Ctx) error {
	e, err := career.GetHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	r, err := career.BuildAnalysisReport(e.FileName, &e.Results)
	if err != nil {
		return err
	}
	return a.sendReport(c, r)
}

// sendReport renders r in the ?format= requested (pdf by default) as an attachment.
func (a *api) sendReport(c *fiber.Ctx, r *career.Report) error {
	format := career.ReportFormat(c.Query("format", string(career.FormatPDF)))
	body, contentType, err := career.Render(c.UserContext(), r, format, a.chromePath)
	if err != nil {
		return err
	}
	c.Attachment(career.ReportFileName(r, format))
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(body)
}
