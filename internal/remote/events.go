package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/xaenox/vfied-bot/internal/models"
	"go.uber.org/zap"
)

const maxAttachmentBytes = 10 << 20

// Attachment is an optional image sent with an event submission
type Attachment struct {
	Filename string
	Data     io.Reader
}

type SubmissionResult struct {
	Status  models.SubmissionStatus
	Event   *models.Event
	Message string
}

type submissionResponse struct {
	Success bool          `json:"success"`
	Status  string        `json:"status"`
	Event   *models.Event `json:"event"`
	Message string        `json:"message"`
}

// SubmitEvent posts the event form as multipart data
func (c *Client) SubmitEvent(ctx context.Context, sub models.EventSubmission, image *Attachment) (SubmissionResult, error) {
	if err := c.validate.Struct(sub); err != nil {
		return SubmissionResult{}, fmt.Errorf("invalid event: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"title", sub.Title},
		{"description", sub.Description},
		{"location", sub.Location},
		{"starts_at", sub.StartsAt.UTC().Format(time.RFC3339)},
		{"submitter_email", sub.SubmitterEmail},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return SubmissionResult{}, fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	if image != nil && image.Data != nil {
		part, err := w.CreateFormFile("image", image.Filename)
		if err != nil {
			return SubmissionResult{}, fmt.Errorf("failed to add image: %w", err)
		}
		n, err := io.Copy(part, io.LimitReader(image.Data, maxAttachmentBytes+1))
		if err != nil {
			return SubmissionResult{}, fmt.Errorf("failed to read image: %w", err)
		}
		if n > maxAttachmentBytes {
			return SubmissionResult{}, fmt.Errorf("image larger than %d bytes", maxAttachmentBytes)
		}
	}
	if err := w.Close(); err != nil {
		return SubmissionResult{}, fmt.Errorf("failed to finish form: %w", err)
	}

	var resp submissionResponse
	status, err := c.send(ctx, c.paths.SubmitEvent, w.FormDataContentType(), &buf, &resp)
	if err != nil {
		return SubmissionResult{}, err
	}
	if status < 200 || status > 299 || !resp.Success {
		return SubmissionResult{}, rejection(resp.Message, "event submission failed")
	}

	result := SubmissionResult{
		Status:  models.StatusPendingReview,
		Event:   resp.Event,
		Message: resp.Message,
	}
	if models.SubmissionStatus(resp.Status) == models.StatusPublished {
		result.Status = models.StatusPublished
	}

	c.logger.Info("Event submitted",
		zap.String("title", sub.Title),
		zap.String("status", string(result.Status)))

	return result, nil
}
