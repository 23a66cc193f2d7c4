package fusionauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MintBarcode requests a fresh barcode id for token. Any HTTP error status is
// reported as ErrTokenExpiredOrInvalid because the endpoint does not reliably
// tell an expired token from a server fault. It never re-authenticates.
func (c *Client) MintBarcode(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", newError(KindTokenExpiredOrInvalid, StepBarcode, "no fusion token")
	}

	if c.Demo && token == DemoToken {
		return nextDemoBarcode(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoints.Barcode, nil)
	if err != nil {
		return "", classify(StepBarcode, fmt.Errorf("failed to create request: %w", err))
	}
	c.setBrowserHeaders(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.plainHTTPClient().Do(req)
	if err != nil {
		return "", transportError(StepBarcode, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", transportError(StepBarcode, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", newError(KindTokenExpiredOrInvalid, StepBarcode, "barcode endpoint returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", newError(KindInvalidResponse, StepBarcode, "unexpected status %d", resp.StatusCode)
	}

	return decodeBarcode(body)
}

// decodeBarcode expects a JSON array whose first element carries a non-empty
// AppBarcodeIdNumber.
func decodeBarcode(body []byte) (string, error) {
	var entries []barcodeEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", &Error{Kind: KindInvalidResponse, Step: StepBarcode, Message: "failed to decode response", Err: err}
	}
	if len(entries) == 0 {
		return "", newError(KindInvalidResponse, StepBarcode, "empty barcode list")
	}

	id := strings.TrimSpace(entries[0].AppBarcodeIDNumber)
	if id == "" {
		return "", newError(KindInvalidResponse, StepBarcode, "missing AppBarcodeIdNumber")
	}
	return id, nil
}

// GenerateBarcode is MintBarcode folded into a BarcodeResult.
func (c *Client) GenerateBarcode(ctx context.Context, token string) BarcodeResult {
	id, err := c.MintBarcode(ctx, token)
	if err != nil {
		c.logger().Warn("barcode request failed", "step", StepBarcode, "kind", KindOf(err).String(), "error", err)
		return BarcodeResult{
			Error: barcodeMessage(err),
			Kind:  KindOf(err),
			Err:   err,
		}
	}
	return BarcodeResult{Success: true, BarcodeID: id}
}
