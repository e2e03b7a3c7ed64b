package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// LygosGateway speaks the Lygos payin API.
type LygosGateway struct {
	BaseURL    string
	APIKey     string
	ShopName   string
	SuccessURL string
	FailureURL string

	client       *http.Client
	statusClient *http.Client
}

func NewLygosGateway(baseURL, apiKey, shopName, successURL, failureURL string) *LygosGateway {
	if baseURL == "" {
		baseURL = "https://api.lygosapp.com/v1"
	}
	return &LygosGateway{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		ShopName:     shopName,
		SuccessURL:   successURL,
		FailureURL:   failureURL,
		client:       &http.Client{Timeout: 30 * time.Second},
		statusClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *LygosGateway) Name() string { return "lygos" }

type lygosInitiateReq struct {
	Amount     int64  `json:"amount"`
	ShopName   string `json:"shop_name"`
	OrderID    string `json:"order_id"`
	Message    string `json:"message"`
	SuccessURL string `json:"success_url,omitempty"`
	FailureURL string `json:"failure_url,omitempty"`
}

func (g *LygosGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	if g.APIKey == "" {
		return nil, ErrUnavailable
	}
	body, _ := json.Marshal(lygosInitiateReq{
		Amount:     req.AmountXAF,
		ShopName:   g.ShopName,
		OrderID:    req.ExternalID,
		Message:    req.Description,
		SuccessURL: g.SuccessURL,
		FailureURL: g.FailureURL,
	})
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/gateway", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("api-key", g.APIKey)
	log.Printf("[LYGOS] POST %s/gateway order_id=%s amount=%d", g.BaseURL, req.ExternalID, req.AmountXAF)
	resp, err := g.client.Do(apiReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[LYGOS] initiate response status=%d body=%s", resp.StatusCode, string(respBody))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	var out map[string]any
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	link := extractPaymentURL(out)
	if link == "" {
		return nil, ErrNoPaymentURL
	}
	paymentID, _ := out["id"].(string)
	if paymentID == "" {
		paymentID, _ = out["payment_id"].(string)
	}
	return &InitiateResponse{PaymentURL: link, TransactionID: paymentID}, nil
}

// QueryStatus polls the payin endpoint for the raw Lygos status of an order.
func (g *LygosGateway) QueryStatus(ctx context.Context, orderID string) (string, error) {
	if g.APIKey == "" {
		return "", ErrUnavailable
	}
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/gateway/payin/"+orderID, nil)
	if err != nil {
		return "", err
	}
	apiReq.Header.Set("api-key", g.APIKey)
	resp, err := g.statusClient.Do(apiReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRejected, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[LYGOS] status order_id=%s response status=%d body=%s", orderID, resp.StatusCode, string(respBody))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}
