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

// FapshiGateway speaks the Fapshi payment API (Cameroon mobile money).
type FapshiGateway struct {
	BaseURL      string
	APIUser      string
	APIKey       string
	client       *http.Client // initiation calls
	statusClient *http.Client // status polls, tighter timeout
}

func NewFapshiGateway(baseURL, apiUser, apiKey string) *FapshiGateway {
	if baseURL == "" {
		baseURL = "https://live.fapshi.com"
	}
	return &FapshiGateway{
		BaseURL:      baseURL,
		APIUser:      apiUser,
		APIKey:       apiKey,
		client:       &http.Client{Timeout: 30 * time.Second},
		statusClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *FapshiGateway) Name() string { return "fapshi" }

type fapshiInitiateReq struct {
	Amount     int64  `json:"amount"`
	Email      string `json:"email"`
	UserID     string `json:"userId"`
	ExternalID string `json:"externalId"`
	Message    string `json:"message"`
}

func (g *FapshiGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	if g.APIUser == "" || g.APIKey == "" {
		return nil, ErrUnavailable
	}
	body, _ := json.Marshal(fapshiInitiateReq{
		Amount:     req.AmountXAF,
		Email:      req.Email,
		UserID:     req.UserRef,
		ExternalID: req.ExternalID,
		Message:    req.Description,
	})
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/initiate-pay", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	g.setHeaders(apiReq)
	log.Printf("[FAPSHI] POST %s/initiate-pay externalId=%s amount=%d", g.BaseURL, req.ExternalID, req.AmountXAF)
	resp, err := g.client.Do(apiReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[FAPSHI] initiate response status=%d body=%s", resp.StatusCode, string(respBody))
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
	transID, _ := out["transId"].(string)
	return &InitiateResponse{PaymentURL: link, TransactionID: transID}, nil
}

// QueryStatus polls /payment-status for the raw Fapshi status string
// (CREATED, PENDING, SUCCESSFUL, FAILED, EXPIRED).
func (g *FapshiGateway) QueryStatus(ctx context.Context, transID string) (string, error) {
	if g.APIUser == "" || g.APIKey == "" {
		return "", ErrUnavailable
	}
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/payment-status/"+transID, nil)
	if err != nil {
		return "", err
	}
	g.setHeaders(apiReq)
	resp, err := g.statusClient.Do(apiReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRejected, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[FAPSHI] status transId=%s response status=%d body=%s", transID, resp.StatusCode, string(respBody))
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

func (g *FapshiGateway) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apiuser", g.APIUser)
	req.Header.Set("apikey", g.APIKey)
}
