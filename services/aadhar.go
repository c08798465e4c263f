package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// AadharResult is the outcome of one verification attempt.
type AadharResult struct {
	Verified    bool   `json:"verified"`
	ReferenceID string `json:"reference_id"`
}

// AadharVerifier is the identity-verification collaborator. The real
// government integration sits behind the api mode; the simulated mode
// always succeeds and exists so the rest of the system can be exercised
// without credentials.
type AadharVerifier interface {
	Verify(ctx context.Context, aadharNumber string) (*AadharResult, error)
}

// GetAadharVerifier returns the verifier for the configured mode.
func GetAadharVerifier() AadharVerifier {
	mode := os.Getenv("AADHAR_VERIFIER_MODE")
	if mode == "api" {
		return NewAPIAadharVerifier()
	}
	// Default to simulated mode (safer)
	return &SimulatedAadharVerifier{}
}

// MaskAadhar returns the display form XXXX-XXXX-<last4>.
func MaskAadhar(number string) string {
	if len(number) < 4 {
		return "XXXX-XXXX-XXXX"
	}
	return "XXXX-XXXX-" + number[len(number)-4:]
}

// SimulatedAadharVerifier always verifies successfully.
type SimulatedAadharVerifier struct{}

func (v *SimulatedAadharVerifier) Verify(ctx context.Context, aadharNumber string) (*AadharResult, error) {
	return &AadharResult{
		Verified:    true,
		ReferenceID: uuid.New().String(),
	}, nil
}

// APIAadharVerifier calls an external verification service over HTTP.
type APIAadharVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAPIAadharVerifier creates the HTTP-backed verifier.
func NewAPIAadharVerifier() *APIAadharVerifier {
	baseURL := os.Getenv("AADHAR_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8091/api"
	}

	apiKey := os.Getenv("AADHAR_API_KEY")

	return &APIAadharVerifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (v *APIAadharVerifier) Verify(ctx context.Context, aadharNumber string) (*AadharResult, error) {
	payload, err := json.Marshal(map[string]string{"aadhar_number": aadharNumber})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/aadhar/verify", v.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("x-api-key", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call verification API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("verification API returned %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Success bool         `json:"success"`
		Data    AadharResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("verification API reported failure")
	}

	return &result.Data, nil
}
