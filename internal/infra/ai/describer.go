package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"threadly/internal/app/policies"
)

// Describer delegates listing description generation to an external model
// service.
type Describer struct {
	Client   *http.Client
	Endpoint string
	Logger   *slog.Logger
}

type describeRequest struct {
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Condition string   `json:"condition"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

type describeResponse struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (d *Describer) Describe(ctx context.Context, title, category, condition string, imageURLs []string) (policies.ListingDescription, error) {
	var zero policies.ListingDescription
	if d == nil || d.Client == nil {
		return zero, errors.New("ai: http client not configured")
	}
	if d.Endpoint == "" {
		return zero, errors.New("ai: describer endpoint not configured")
	}

	body, err := json.Marshal(describeRequest{
		Title:     title,
		Category:  category,
		Condition: condition,
		ImageURLs: imageURLs,
	})
	if err != nil {
		return zero, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint+"/describe", bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(request)
	if err != nil {
		d.logError("describe request failed", title, err)
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("ai: describer returned status %d: %s", resp.StatusCode, string(snippet))
		d.logError("describe returned error", title, err)
		return zero, err
	}

	var out describeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		d.logError("describe decode failed", title, err)
		return zero, err
	}
	return policies.ListingDescription{Description: out.Description, Tags: out.Tags}, nil
}

func (d *Describer) logError(msg, title string, err error) {
	if d.Logger != nil {
		d.Logger.Error(msg, "title", title, "error", err)
	}
}

var _ policies.DescriberPort = (*Describer)(nil)
