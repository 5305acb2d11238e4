package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/config"
	"github.com/grovellows/tender-backend/shared"
)

const (
	tedSearchAPIURL  = "https://api.ted.europa.eu/v3/notices/search"
	tedBrowseURL     = "https://ted.europa.eu/de/search/result?q=Projektsteuerung+Deutschland"
	tedPlatformName  = "TED Europa"
	tedExpertFields  = "notice-title,buyer-name,deadline-receipt-tender,place-of-performance,estimated-value"
	tedExpertQuery   = `(notice-title ~ ("Projektsteuerung" OR "Projektmanagement" OR "Bauüberwachung")) AND (place-of-performance IN (DEU))`
	tedSearchPageCap = 50
)

// TEDAdapter queries the EU-wide Tenders Electronic Daily platform. The JSON
// search API is the primary path; when it is unavailable the adapter falls
// back to parsing the public search result page.
type TEDAdapter struct {
	logger        *logrus.Entry
	clientFactory *shared.HTTPClientFactory
	rateLimiter   *shared.HTTPRequestRateLimiter
	metrics       *shared.ExtractionMetrics
	cfg           config.ScraperConfig
}

func NewTEDAdapter(clientFactory *shared.HTTPClientFactory, rateLimiter *shared.HTTPRequestRateLimiter, metrics *shared.ExtractionMetrics, cfg config.ScraperConfig) *TEDAdapter {
	return &TEDAdapter{
		logger:        logrus.WithField("component", "TEDAdapter"),
		clientFactory: clientFactory,
		rateLimiter:   rateLimiter,
		metrics:       metrics,
		cfg:           cfg,
	}
}

func (a *TEDAdapter) Name() string     { return "ted" }
func (a *TEDAdapter) Platform() string { return tedPlatformName }

type tedSearchRequest struct {
	Query  string   `json:"query"`
	Fields []string `json:"fields"`
	Limit  int      `json:"limit"`
}

type tedSearchResponse struct {
	Notices []tedNotice `json:"notices"`
}

type tedNotice struct {
	Title    map[string]string `json:"notice-title"`
	Buyer    map[string]string `json:"buyer-name"`
	Deadline string            `json:"deadline-receipt-tender"`
	Place    map[string]string `json:"place-of-performance"`
	Value    json.Number       `json:"estimated-value"`
}

func (a *TEDAdapter) Fetch(ctx context.Context) ([]RawListing, error) {
	a.rateLimiter.EnforceRateLimit()

	listings, apiErr := a.fetchFromAPI(ctx)
	if apiErr == nil && len(listings) > 0 {
		a.logger.WithField("listing_count", len(listings)).Info("Fetched TED listings via search API")
		return listings, nil
	}
	if apiErr != nil {
		a.logger.WithError(apiErr).Warn("TED search API unavailable, falling back to HTML")
	}

	listings, htmlErr := a.fetchFromHTML(ctx)
	if htmlErr != nil {
		if apiErr != nil {
			return nil, shared.WrapError(htmlErr, shared.ErrorCategoryNetwork, "TED_FETCH_FAILED",
				fmt.Sprintf("both API and HTML paths failed, API error: %v", apiErr),
				"TEDAdapter", "Fetch")
		}
		return nil, htmlErr
	}

	a.logger.WithField("listing_count", len(listings)).Info("Fetched TED listings via HTML fallback")
	return listings, nil
}

func (a *TEDAdapter) fetchFromAPI(ctx context.Context) ([]RawListing, error) {
	payload, err := json.Marshal(tedSearchRequest{
		Query:  tedExpertQuery,
		Fields: strings.Split(tedExpertFields, ","),
		Limit:  tedSearchPageCap,
	})
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, tedSearchAPIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	shared.SetBrowserLikeHeaders(request, "application/json")

	client := a.clientFactory.CreateOptimizedHTTPClient(a.cfg.RequestTimeout)
	response, err := shared.ExecuteHTTPRequestWithRetry(client, request, a.cfg.MaxRetries)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var searchResponse tedSearchResponse
	if err := json.NewDecoder(response.Body).Decode(&searchResponse); err != nil {
		return nil, fmt.Errorf("failed to decode TED search response: %w", err)
	}

	var listings []RawListing
	for _, notice := range searchResponse.Notices {
		title := localizedValue(notice.Title)
		if len(title) <= 15 {
			continue
		}
		listings = append(listings, RawListing{
			Title:        title,
			Authority:    localizedValue(notice.Buyer),
			Location:     localizedValue(notice.Place),
			DeadlineText: notice.Deadline,
			BudgetValue:  notice.Value.String(),
			Platform:     tedPlatformName,
			PlatformURL:  "https://ted.europa.eu",
			Country:      "Germany",
		})
	}
	return listings, nil
}

func (a *TEDAdapter) fetchFromHTML(ctx context.Context) ([]RawListing, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, tedBrowseURL, nil)
	if err != nil {
		return nil, err
	}
	shared.SetBrowserLikeHeaders(request, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	client := a.clientFactory.CreateOptimizedHTTPClient(a.cfg.RequestTimeout)
	response, err := shared.ExecuteHTTPRequestWithRetry(client, request, a.cfg.MaxRetries)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "TED_HTML_FETCH_FAILED",
			"failed to fetch TED search page", "TEDAdapter", "fetchFromHTML")
	}
	defer response.Body.Close()

	document, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordHTMLParseError()
		}
		return nil, shared.WrapError(err, shared.ErrorCategoryProcessing, "TED_HTML_PARSE_FAILED",
			"failed to parse TED search page", "TEDAdapter", "fetchFromHTML")
	}

	var listings []RawListing
	seen := make(map[string]bool)
	document.Find("table.search-results tr, div.notice-item, article").Each(func(_ int, selection *goquery.Selection) {
		title := strings.TrimSpace(selection.Find("a, h3").First().Text())
		if len(title) <= 15 || seen[title] {
			return
		}
		seen[title] = true

		link, _ := selection.Find("a[href]").First().Attr("href")
		if link != "" && strings.HasPrefix(link, "/") {
			link = "https://ted.europa.eu" + link
		}

		listings = append(listings, RawListing{
			Title:       title,
			Description: strings.TrimSpace(selection.Find("p").First().Text()),
			DetailURL:   link,
			Platform:    tedPlatformName,
			PlatformURL: "https://ted.europa.eu",
			Country:     "Germany",
		})
	})

	return listings, nil
}

// localizedValue prefers the German text of a multilingual TED field, then
// English, then whatever is present.
func localizedValue(values map[string]string) string {
	if values == nil {
		return ""
	}
	if v, ok := values["deu"]; ok {
		return v
	}
	if v, ok := values["eng"]; ok {
		return v
	}
	for _, v := range values {
		return v
	}
	return ""
}
