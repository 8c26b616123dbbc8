// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpsigner implements signer.Signer over HTTP against an
// authsign-style signing endpoint — the concrete, network-facing
// implementation the core library's Signer interface deliberately
// keeps out of its own dependency graph.
package httpsigner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rebeccacremona/go-wacz/lib/signer"
)

// Signer calls an authsign-style HTTP endpoint's /sign route, posting
// {hash, created} and parsing the response body as signer.SignedData.
type Signer struct {
	endpoint   string
	httpClient *http.Client
}

// New returns a Signer that POSTs to endpoint. endpoint should be the
// full sign URL (for example "https://sign.example.org/sign"). A nil
// httpClient defaults to http.DefaultClient.
func New(endpoint string, httpClient ...*http.Client) *Signer {
	client := http.DefaultClient
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &Signer{endpoint: endpoint, httpClient: client}
}

type signRequest struct {
	Hash    string `json:"hash"`
	Created string `json:"created"`
}

// Sign implements signer.Signer.
func (s *Signer) Sign(ctx context.Context, hash, created string) (signer.SignedData, error) {
	body, err := json.Marshal(signRequest{Hash: hash, Created: created})
	if err != nil {
		return signer.SignedData{}, fmt.Errorf("httpsigner: encoding request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return signer.SignedData{}, fmt.Errorf("httpsigner: building request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := s.httpClient.Do(request)
	if err != nil {
		return signer.SignedData{}, fmt.Errorf("httpsigner: request to %s failed: %w", s.endpoint, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return signer.SignedData{}, fmt.Errorf("httpsigner: reading response: %w", err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return signer.SignedData{}, &Error{StatusCode: response.StatusCode, Body: string(responseBody)}
	}

	var signedData signer.SignedData
	if err := json.Unmarshal(responseBody, &signedData); err != nil {
		return signer.SignedData{}, fmt.Errorf("httpsigner: parsing response: %w", err)
	}
	return signedData, nil
}

// Error represents a non-2xx response from the signing endpoint.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("httpsigner: signing endpoint returned HTTP %d: %s", e.StatusCode, e.Body)
}
