package httpapi

import (
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/anatolykoptev/go_career/internal/engine/career"
)

type analyzeRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
	FileName       string `json:"fileName"`
}

// analyzeResponse is the analysis plus the history entry it was stored as.
type analyzeResponse struct {
	*career.AnalysisResult
	HistoryID string `json:"historyId,omitempty"`
}

func (a *api) analyzeResume(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := a.analyzeAndRecord(c, req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (a *api) analyzeAndRecord(c *fiber.Ctx, req analyzeRequest) (*analyzeResponse, error) {
	result, err := career.AnalyzeResume(c.UserContext(), career.AnalyzeInput{
		ResumeText:     req.ResumeText,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		return nil, err
	}
	res := &analyzeResponse{AnalysisResult: result}
	entry, err := career.RecordAnalysis(c.UserContext(), req.FileName, result)
	if err != nil {
		slog.Warn("analyze: history not saved", slog.Any("error", err))
	} else {
		res.HistoryID = entry.ID
	}
	return res, nil
}

type uploadQueued struct {
	JobID     string `json:"jobId"`
	Status    string `json:"status"`
	ObjectKey string `json:"objectKey,omitempty"`
}

// upload accepts a multipart "file" field. With async=true and a queue
// configured the analysis is enqueued and 202 is returned.
func (a *api) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if err := career.ValidateUpload(fh.Filename, fh.Size); err != nil {
		return err
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, career.MaxUploadBytes+1))
	if err != nil {
		return err
	}

	text, err := career.ExtractText(fh.Filename, data)
	if err != nil {
		return err
	}
	if err := career.ValidateResumeText(text); err != nil {
		return err
	}

	var key string
	if a.objects != nil {
		key = career.ResumeKey(fh.Filename, time.Now())
		if err := a.objects.PutResume(c.UserContext(), key, data, fh.Header.Get("Content-Type")); err != nil {
			slog.Warn("upload: archive failed", slog.String("file", fh.Filename), slog.Any("error", err))
			key = ""
		}
	}

	jobDesc := c.FormValue("jobDescription")
	if async, _ := strconv.ParseBool(c.FormValue("async")); async && a.queue != nil {
		id, err := a.queue.Publish(c.UserContext(), career.AnalysisJob{
			FileName:       fh.Filename,
			ResumeText:     text,
			ObjectKey:      key,
			JobDescription: jobDesc,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(uploadQueued{JobID: id, Status: career.JobQueued, ObjectKey: key})
	}

	res, err := a.analyzeAndRecord(c, analyzeRequest{ResumeText: text, JobDescription: jobDesc, FileName: fh.Filename})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (a *api) generateResume(c *fiber.Ctx) error {
	var req career.GenerateResumeInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	out, err := career.GenerateResume(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (a *api) prompt(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	out, err := career.CompletePrompt(c.UserContext(), req.Prompt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"result": out})
}
