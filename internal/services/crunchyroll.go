// Crunchyroll implementation of [CatalogSource]
//
// Uses the provider's anonymous OAuth client flow; no user credentials are
// required for catalog browsing.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultCRBaseURL = "https://www.crunchyroll.com"
	crTokenPath      = "/auth/v1/token"
	crBrowsePath     = "/content/v2/discover/browse"
)

// requiredItemFields are the keys every catalog record must expose.
// Checked on the first record of a fresh fetch to detect upstream schema drift.
var requiredItemFields = []string{"id", "title", "type", "description"}

// CrunchyrollService implements [CatalogSource] for the Crunchyroll catalog API.
type CrunchyrollService struct {
	baseURL    string
	basicToken string
	userAgent  string
	locale     string
	pageSize   int
	httpClient *http.Client
	token      *oauth2.Token
}

// NewCrunchyrollService creates a new catalog source from configuration.
func NewCrunchyrollService(cfg shared.CatalogConfig, client *http.Client) *CrunchyrollService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultCRBaseURL
	}
	if cfg.Locale == "" {
		cfg.Locale = "en-US"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 2000
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &CrunchyrollService{
		baseURL:    cfg.BaseURL,
		basicToken: cfg.BasicToken,
		userAgent:  cfg.UserAgent,
		locale:     cfg.Locale,
		pageSize:   cfg.PageSize,
		httpClient: client,
	}
}

// Name returns the provider name.
func (c *CrunchyrollService) Name() string {
	return "Crunchyroll"
}

// Authenticate fetches an anonymous access token using the public client token.
//
// On success, subsequent requests go through an [oauth2.NewClient] that
// attaches the bearer token.
func (c *CrunchyrollService) Authenticate(ctx context.Context) error {
	if c.basicToken == "" {
		return fmt.Errorf("%w: missing catalog basic_token", shared.ErrMissingCredentials)
	}

	form := url.Values{"grant_type": {"client_id"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+crTokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Authorization", "Basic "+c.basicToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: token request: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: token endpoint returned status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("%w: failed to decode token response: %v", shared.ErrAuthFailed, err)
	}
	if tokenResp.AccessToken == "" {
		return fmt.Errorf("%w: no access token in response", shared.ErrAuthFailed)
	}

	c.token = &oauth2.Token{AccessToken: tokenResp.AccessToken, TokenType: tokenResp.TokenType}
	c.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(c.token))
	return nil
}

// browseResponse holds the catalog listing envelope.
//
// Data stays raw so the schema check can distinguish absent keys from empty values.
type browseResponse struct {
	Total int               `json:"total"`
	Data  []json.RawMessage `json:"data"`
}

// FetchCatalog retrieves the full series catalog.
func (c *CrunchyrollService) FetchCatalog(ctx context.Context) ([]models.CatalogItem, error) {
	if c.token == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	params := url.Values{
		"n":                        {strconv.Itoa(c.pageSize)},
		"type":                     {"series"},
		"locale":                   {c.locale},
		"sort_by":                  {"alphabetical"},
		"ratings":                  {"true"},
		"preferred_audio_language": {"ja-JP"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+crBrowsePath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create browse request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: browse request: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: browse endpoint returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var browse browseResponse
	if err := json.NewDecoder(resp.Body).Decode(&browse); err != nil {
		return nil, fmt.Errorf("%w: failed to decode browse response: %v", shared.ErrAPIRequest, err)
	}

	if len(browse.Data) > 0 {
		if err := validateItemShape(browse.Data[0]); err != nil {
			return nil, err
		}
	}

	items := make([]models.CatalogItem, 0, len(browse.Data))
	for _, raw := range browse.Data {
		var item models.CatalogItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("%w: malformed catalog record: %v", shared.ErrSchemaDrift, err)
		}
		items = append(items, item)
	}

	return items, nil
}

// validateItemShape checks that a raw catalog record exposes every required key.
//
// Runs against the first record of a fresh fetch; a missing key means the
// upstream shape changed and the run must abort before any write.
func validateItemShape(raw json.RawMessage) error {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("%w: first catalog record is not an object: %v", shared.ErrSchemaDrift, err)
	}

	for _, field := range requiredItemFields {
		if _, ok := record[field]; !ok {
			return fmt.Errorf("%w: catalog record missing %q field", shared.ErrSchemaDrift, field)
		}
	}

	return nil
}
