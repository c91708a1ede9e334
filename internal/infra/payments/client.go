package payments

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

// HTTPProvider talks to an external payment gateway over its JSON API.
type HTTPProvider struct {
	Client   *http.Client
	Endpoint string
	APIKey   string
	Logger   *slog.Logger
}

type intentRequest struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Capture  string  `json:"capture_method"`
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

func (p *HTTPProvider) CreateIntent(ctx context.Context, orderID string, amount float64, currency string) (policies.PaymentIntent, error) {
	var zero policies.PaymentIntent
	if p == nil || p.Client == nil || p.Endpoint == "" {
		return zero, errors.New("payments: provider not configured")
	}

	payload := intentRequest{OrderID: orderID, Amount: amount, Currency: currency, Capture: "manual"}
	var resp intentResponse
	if err := p.post(ctx, "/intents", payload, &resp); err != nil {
		p.logError("create intent failed", orderID, err)
		return zero, err
	}
	return policies.PaymentIntent{ID: resp.ID, ClientSecret: resp.ClientSecret}, nil
}

func (p *HTTPProvider) Capture(ctx context.Context, intentID string) (string, error) {
	var resp struct {
		PaymentID string `json:"payment_id"`
	}
	if err := p.post(ctx, "/intents/"+intentID+"/capture", struct{}{}, &resp); err != nil {
		p.logError("capture failed", intentID, err)
		return "", err
	}
	return resp.PaymentID, nil
}

func (p *HTTPProvider) Release(ctx context.Context, intentID string) error {
	if err := p.post(ctx, "/intents/"+intentID+"/release", struct{}{}, nil); err != nil {
		p.logError("release failed", intentID, err)
		return err
	}
	return nil
}

func (p *HTTPProvider) Refund(ctx context.Context, intentID string) error {
	if err := p.post(ctx, "/intents/"+intentID+"/refund", struct{}{}, nil); err != nil {
		p.logError("refund failed", intentID, err)
		return err
	}
	return nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		request.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.Client.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("payments: gateway returned status %d: %s", resp.StatusCode, string(snippet))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *HTTPProvider) logError(msg, ref string, err error) {
	if p.Logger != nil {
		p.Logger.Error(msg, "ref", ref, "error", err)
	}
}

var _ policies.PaymentsPort = (*HTTPProvider)(nil)
