package propublica

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orgFixture = `{
	"organization": {
		"name": "ALBRIGHT COLLEGE",
		"ein": 231352615,
		"city": "READING",
		"state": "PA",
		"ntee_code": "B42",
		"subsection_code": 3,
		"website": "https://www.albright.edu"
	},
	"filings_with_data": [
		{
			"tax_prd_yr": 2023,
			"totrevenue": 61000000,
			"totfuncexpns": 81100000,
			"totnetassetend": 45200000,
			"totprgmrevnue": 35000000,
			"totcntrbgfts": 9000000,
			"invstmntinc": 1200000
		},
		{
			"tax_prd_yr": 2022,
			"totrevenue": 70000000
		}
	]
}`

func TestOrganization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/231352615.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(orgFixture))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	filing, err := c.Organization(context.Background(), "23-1352615")
	require.NoError(t, err)

	assert.Equal(t, "ALBRIGHT COLLEGE", filing.Org.Name)
	assert.Equal(t, "231352615", filing.Org.EIN)
	assert.Equal(t, "PA", filing.Org.State)
	assert.Equal(t, "501(c)(3)", filing.Org.Classification)

	// Latest filing is taken, not the older one.
	assert.Equal(t, 2023, filing.Facts.FilingYear)
	require.NotNil(t, filing.Facts.TotalRevenue)
	assert.Equal(t, 61000000.0, *filing.Facts.TotalRevenue)
	require.NotNil(t, filing.Facts.TotalExpenses)
	assert.Equal(t, 81100000.0, *filing.Facts.TotalExpenses)
	require.NotNil(t, filing.Facts.TuitionRevenue)
	assert.Equal(t, 35000000.0, *filing.Facts.TuitionRevenue)
}

func TestOrganization_SparseFiling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"organization": {"name": "TINY SEMINARY", "ein": 111111111, "state": "OH"},
			"filings_with_data": [{"tax_prd_yr": 2023, "totrevenue": 5000000}]
		}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	filing, err := c.Organization(context.Background(), "111111111")
	require.NoError(t, err)

	// Absent extract columns stay nil rather than defaulting to zero.
	assert.Nil(t, filing.Facts.TotalExpenses)
	assert.Nil(t, filing.Facts.NetAssets)
	assert.Nil(t, filing.Facts.TuitionRevenue)
	require.NotNil(t, filing.Facts.TotalRevenue)
	assert.Empty(t, filing.Org.Classification)
}

func TestOrganization_NoFilings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"organization": {"name": "X", "ein": 111111111}, "filings_with_data": []}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	_, err := c.Organization(context.Background(), "111111111")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no filings with data")
}

func TestOrganization_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	_, err := c.Organization(context.Background(), "999999999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no organization found")
}

func TestOrganization_InvalidEIN(t *testing.T) {
	c := New()
	_, err := c.Organization(context.Background(), "12345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ein")
}
