// Package httpapi serves CareerPilot over a JSON HTTP API.
package httpapi

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/anatolykoptev/go_career/internal/engine"
	"github.com/anatolykoptev/go_career/internal/engine/career"
	"github.com/anatolykoptev/go_career/internal/toolutil"
)

// Options wires optional infrastructure into the API. Zero values disable
// the matching feature.
type Options struct {
	Sessions    *career.SessionManager // defaults to career.Sessions
	Queue       *career.AnalysisQueue  // async uploads
	Objects     *career.ObjectStore    // upload archive
	ChromePath  string                 // PDF export
	CORSOrigins string                 // comma-separated, "*" when empty
}

type api struct {
	sessions   *career.SessionManager
	queue      *career.AnalysisQueue
	objects    *career.ObjectStore
	chromePath string
}

// New builds the fiber app with every route registered.
func New(opts Options) *fiber.App {
	a := &api{
		sessions:   opts.Sessions,
		queue:      opts.Queue,
		objects:    opts.Objects,
		chromePath: opts.ChromePath,
	}
	if a.sessions == nil {
		a.sessions = career.Sessions
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-career",
		BodyLimit:             career.MaxUploadBytes + 1<<20,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          10 * time.Minute,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: orDefault(opts.CORSOrigins, "*")}))
	app.Use(requestLogger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	r := app.Group("/api")
	r.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendString(engine.FormatMetrics())
	})

	r.Post("/analyze-resume", a.analyzeResume)
	r.Post("/upload", a.upload)
	r.Post("/generate-resume", a.generateResume)
	r.Post("/openai", a.prompt)

	r.Get("/jobs", a.listJobs)
	r.Get("/jobs/saved", a.savedJobs)
	r.Post("/jobs/:id/save", a.toggleSavedJob)

	r.Get("/history", a.listHistory)
	r.Delete("/history", a.clearHistory)
	r.Get("/history/:id", a.getHistory)
	r.Delete("/history/:id", a.deleteHistory)
	r.Get("/history/:id/report", a.historyReport)

	r.Post("/interview/sessions", a.startSession)
	r.Get("/interview/sessions/:id", a.getSession)
	r.Delete("/interview/sessions/:id", a.deleteSession)
	r.Post("/interview/sessions/:id/responses", a.submitResponse)
	r.Post("/interview/sessions/:id/feedback", a.finishSession)
	r.Get("/interview/sessions/:id/report", a.sessionReport)

	r.Post("/roadmap", a.roadmap)
	return app
}

// errorHandler renders every error as {"error": msg}. Domain errors are
// mapped to a status and stripped of internal detail.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	status := toolutil.StatusCode(err)
	public := toolutil.PublicError(c.Method()+" "+c.Path(), err)
	return c.Status(status).JSON(fiber.Map{"error": public.Error()})
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	attrs := []any{
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Duration("took", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	slog.Debug("http", attrs...)
	return err
}

func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
