package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"maison-core/internal/domain/entity"
)

// SerperImageSearch queries the serper.dev image endpoint.
type SerperImageSearch struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type serperImagesResponse struct {
	Images []struct {
		Title    string `json:"title"`
		ImageURL string `json:"imageUrl"`
	} `json:"images"`
}

func NewSerperImageSearch(apiKey, baseURL string, timeout time.Duration) *SerperImageSearch {
	return &SerperImageSearch{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SearchImages returns every image URL of the response in order. A response
// without an images field yields no URLs and no error.
func (s *SerperImageSearch) SearchImages(ctx context.Context, query string) ([]string, error) {
	payload, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/images", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build image search request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrImageSearch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", entity.ErrImageSearch, resp.StatusCode, string(body))
	}

	var parsed serperImagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", entity.ErrImageSearch, err)
	}

	urls := make([]string, 0, len(parsed.Images))
	for _, img := range parsed.Images {
		if img.ImageURL != "" {
			urls = append(urls, img.ImageURL)
		}
	}
	return urls, nil
}
