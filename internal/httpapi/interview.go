package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anatolykoptev/go_career/internal/engine/career"
)

func (a *api) startSession(c *fiber.Ctx) error {
	var in career.StartInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	s, err := a.sessions.Start(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

type sessionView struct {
	Session *career.InterviewSession `json:"session"`
	Elapsed string                   `json:"elapsed"`
	Active  bool                     `json:"active"`
}

func (a *api) getSession(c *fiber.Ctx) error {
	id := c.Params("id")
	s, err := a.sessions.Get(id)
	if err != nil {
		return err
	}
	elapsed, err := a.sessions.Elapsed(id)
	if err != nil {
		return err
	}
	return c.JSON(sessionView{Session: s, Elapsed: elapsed, Active: a.sessions.Active(id)})
}

func (a *api) deleteSession(c *fiber.Ctx) error {
	if err := a.sessions.Delete(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *api) submitResponse(c *fiber.Ctx) error {
	var req struct {
		Text     string `json:"text"`
		Duration int    `json:"duration"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := a.sessions.SubmitResponse(c.UserContext(), c.Params("id"), req.Text, req.Duration)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (a *api) finishSession(c *fiber.Ctx) error {
	fb, err := a.sessions.Finish(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fb)
}

func (a *api) sessionReport(c *fiber.Ctx) error {
	s, err := a.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}
	r, err := career.BuildInterviewReport(s)
	if err != nil {
		return err
	}
	return a.sendReport(c, r)
}
