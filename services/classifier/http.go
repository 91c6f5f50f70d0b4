package classifiersvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core/report"
)

const maxResponseSize = 4 << 20

// HTTPClassifier posts the answers to a remote classification endpoint.
//
// Request:  POST <url> {"answers": ["...", ...]}
// Response: [cluster, ...] or {"clusters": [cluster, ...]}
type HTTPClassifier struct {
	client *http.Client
	url    string
	apiKey string
}

var _ report.Classifier = (*HTTPClassifier)(nil)

func NewHTTPClassifier(client *http.Client, url, apiKey string) *HTTPClassifier {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClassifier{client: client, url: url, apiKey: apiKey}
}

type classifyRequest struct {
	Answers []string `json:"answers"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, answers []string) ([]report.Cluster, error) {
	body, err := json.Marshal(classifyRequest{Answers: answers})
	if err != nil {
		return nil, errors.Wrap(err, "encoding classifier request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "creating classifier request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling classifier")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "reading classifier response")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("classifier responded %d: %s", resp.StatusCode, truncate(data, 200))
	}

	clusters, err := report.ParseClusters(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing classifier response")
	}
	return clusters, nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
