package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mwenda/somo/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	assetTimeout   = 2 * time.Minute
	userAgent      = "Somo/1.0"
)

// Client implements domain.ContentClient against the learning content API.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	assetClient *http.Client
	logger      *slog.Logger
}

// NewClient creates a new content API client
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		assetClient: &http.Client{Timeout: assetTimeout},
		logger:      logger,
	}
}

// SetToken updates the access token
func (c *Client) SetToken(token string) {
	c.token = token
}

// doRequest performs an authenticated HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("api request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("api request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrAuthFailed
	case http.StatusNotFound:
		return nil, domain.ErrUnitNotFound
	default:
		c.logger.Error("api request error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

// GetUnits returns lightweight metadata for all units visible to the user
func (c *Client) GetUnits(ctx context.Context) ([]domain.UnitMetadata, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v1/units", nil)
	if err != nil {
		return nil, err
	}

	var resp unitListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to parse unit list", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	units := make([]domain.UnitMetadata, 0, len(resp.Units))
	for _, dto := range resp.Units {
		units = append(units, mapUnitMetadata(dto))
	}
	return units, nil
}

// GetUnitContent returns a unit's full lessons, exercises, and asset manifest
func (c *Client) GetUnitContent(ctx context.Context, unitID string) (*domain.UnitContent, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v1/units/"+url.PathEscape(unitID)+"/content", nil)
	if err != nil {
		return nil, err
	}

	var dto unitContentDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		c.logger.Error("failed to parse unit content", "error", err, "unitID", unitID)
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return mapUnitContent(unitID, dto), nil
}

// FetchAsset downloads one asset payload. Manifest URLs may be absolute or
// relative to the API base.
func (c *Client) FetchAsset(ctx context.Context, entry domain.AssetManifestEntry) ([]byte, error) {
	assetURL := entry.URL
	if strings.HasPrefix(assetURL, "/") {
		assetURL = c.baseURL + assetURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("asset request", "assetID", entry.AssetID, "url", assetURL)

	resp, err := c.assetClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for asset %s", resp.StatusCode, entry.AssetID)
	}

	return io.ReadAll(resp.Body)
}
