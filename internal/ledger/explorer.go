package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrAPI is returned when the explorer answers with a non-success status.
var ErrAPI = errors.New("explorer api error")

const userAgent = "Mozilla/5.0"

// Explorer reads the txlist endpoint of an Etherscan-compatible API
// (Etherscan, Snowtrace, Routescan).
type Explorer struct {
	url    string
	apiKey string
	client *http.Client
}

// NewExplorer creates an explorer client. apiKey may be empty.
func NewExplorer(baseURL, apiKey string, timeout time.Duration) *Explorer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Explorer{
		url:    baseURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

type txListResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type txRecord struct {
	Hash  string `json:"hash"`
	Value string `json:"value"`
	Input string `json:"input"`
}

// Fetch returns up to window of the newest transactions sent to address,
// newest first.
func (e *Explorer) Fetch(ctx context.Context, address string, window int) ([]Transaction, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("sort", "desc")
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(window))
	if e.apiKey != "" {
		params.Set("apikey", e.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", e.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer api status %d: %s", resp.StatusCode, body)
	}

	var result txListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Status != "1" {
		// An address with no history is reported as a failure.
		if strings.EqualFold(result.Message, "No transactions found") {
			return nil, nil
		}
		msg := result.Message
		var detail string
		if json.Unmarshal(result.Result, &detail) == nil && detail != "" {
			msg += ": " + detail
		}
		return nil, fmt.Errorf("%w: %s", ErrAPI, msg)
	}

	var records []txRecord
	if err := json.Unmarshal(result.Result, &records); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if len(records) > window {
		records = records[:window]
	}

	txs := make([]Transaction, 0, len(records))
	for _, r := range records {
		txs = append(txs, Transaction{
			Hash:  r.Hash,
			Value: ParseValue(r.Value),
			Input: r.Input,
		})
	}
	return txs, nil
}
