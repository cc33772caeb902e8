// Package propublica provides a client for the ProPublica Nonprofit Explorer
// API, which serves IRS Form 990 filing data for tax-exempt organizations.
package propublica

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/charter-stone/analyst-cli/internal/model"
)

const defaultBaseURL = "https://projects.propublica.org/nonprofits/api/v2"

// Client defines the Nonprofit Explorer operations used by the analyst.
type Client interface {
	// Organization fetches org details and the most recent filing for an EIN.
	Organization(ctx context.Context, ein string) (*Filing, error)
}

// Filing holds the organization details and latest Form 990 figures.
type Filing struct {
	Org   model.OrgInfo
	Facts model.FinancialFacts
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// New creates a Nonprofit Explorer client. The API requires no key.
func New(opts ...Option) Client {
	c := &client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// orgResponse mirrors the /organizations/{ein}.json payload. Field names
// follow the IRS extract columns the API exposes.
type orgResponse struct {
	Organization struct {
		Name       string `json:"name"`
		EIN        int64  `json:"ein"`
		City       string `json:"city"`
		State      string `json:"state"`
		NTEECode   string `json:"ntee_code"`
		Subsection int    `json:"subsection_code"`
		Website    string `json:"website"`
	} `json:"organization"`
	FilingsWithData []filingWithData `json:"filings_with_data"`
}

type filingWithData struct {
	TaxPeriodYear       int      `json:"tax_prd_yr"`
	TotalRevenue        *float64 `json:"totrevenue"`
	TotalExpenses       *float64 `json:"totfuncexpns"`
	TotalAssetsEnd      *float64 `json:"totassetsend"`
	TotalNetAssetsEnd   *float64 `json:"totnetassetend"`
	TotalProgramRevenue *float64 `json:"totprgmrevnue"`
	TotalContributions  *float64 `json:"totcntrbgfts"`
	InvestmentIncome    *float64 `json:"invstmntinc"`
}

func (c *client) Organization(ctx context.Context, ein string) (*Filing, error) {
	normalized := model.NormalizeEIN(ein)
	if len(normalized) != 9 {
		return nil, eris.Errorf("propublica: invalid ein %q", ein)
	}

	url := fmt.Sprintf("%s/organizations/%s.json", c.baseURL, normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "propublica: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "propublica: execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, eris.Errorf("propublica: no organization found for ein %s", normalized)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, eris.Errorf("propublica: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload orgResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, eris.Wrap(err, "propublica: decode response")
	}

	if len(payload.FilingsWithData) == 0 {
		return nil, eris.Errorf("propublica: no filings with data for ein %s", normalized)
	}

	// Filings are returned newest first.
	latest := payload.FilingsWithData[0]

	return &Filing{
		Org: model.OrgInfo{
			Name:           payload.Organization.Name,
			EIN:            normalized,
			City:           payload.Organization.City,
			State:          payload.Organization.State,
			NTEECode:       payload.Organization.NTEECode,
			Classification: classification(payload.Organization.Subsection),
			Website:        payload.Organization.Website,
		},
		Facts: model.FinancialFacts{
			FilingYear:       latest.TaxPeriodYear,
			TotalRevenue:     latest.TotalRevenue,
			TotalExpenses:    latest.TotalExpenses,
			NetAssets:        latest.TotalNetAssetsEnd,
			TuitionRevenue:   latest.TotalProgramRevenue,
			Contributions:    latest.TotalContributions,
			InvestmentIncome: latest.InvestmentIncome,
		},
	}, nil
}

// classification renders the IRS subsection code as the familiar 501(c)
// designation. Unknown or absent codes yield an empty string.
func classification(subsection int) string {
	if subsection <= 0 {
		return ""
	}
	return fmt.Sprintf("501(c)(%d)", subsection)
}
