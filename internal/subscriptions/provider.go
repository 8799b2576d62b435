package subscriptions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HostedProvider talks to a provider-hosted checkout API. The platform
// behind it is interchangeable; tier changes only arrive through the
// signed webhook.
type HostedProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHostedProvider(baseURL, apiKey string) *HostedProvider {
	return &HostedProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HostedProvider) CreateCheckout(ctx context.Context, contractorID uuid.UUID, plan Plan) (*CheckoutSession, error) {
	body, err := json.Marshal(map[string]interface{}{
		"reference":   contractorID.String(),
		"tier":        string(plan.Tier),
		"amount":      plan.PriceCents,
		"description": plan.Name + " subscription",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("checkout request returned status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}
