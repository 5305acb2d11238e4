package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/config"
	"github.com/grovellows/tender-backend/shared"
)

const bayernTickerURL = "https://www.auftraege.bayern.de/NetServer/index.jsp"

// itemTicker entries read "Titel der Ausschreibung (Vergabestelle)"
var tickerEntryPattern = regexp.MustCompile(`(.+?)\s*\(([^)]+)\)`)

// BayernTickerAdapter extracts tenders from the Bavarian procurement
// portal's announcement ticker. The ticker is rendered by JavaScript, so the
// page runs in a headless browser instead of going through colly.
type BayernTickerAdapter struct {
	logger *logrus.Entry
	cfg    config.ScraperConfig
}

func NewBayernTickerAdapter(cfg config.ScraperConfig) *BayernTickerAdapter {
	return &BayernTickerAdapter{
		logger: logrus.WithField("component", "BayernTickerAdapter"),
		cfg:    cfg,
	}
}

func (a *BayernTickerAdapter) Name() string     { return "bayern_ticker" }
func (a *BayernTickerAdapter) Platform() string { return "Vergabe Bayern" }

func (a *BayernTickerAdapter) Fetch(ctx context.Context) ([]RawListing, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("mute-audio", true),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, a.cfg.RequestTimeout)
	defer cancelTimeout()

	var tickerItems []string
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(bayernTickerURL),
		chromedp.WaitVisible("#webTicker li.itemTicker", chromedp.ByQuery),
		chromedp.Evaluate(`
			Array.from(document.querySelectorAll('#webTicker li.itemTicker'))
				.map(item => item.innerText.trim())
		`, &tickerItems),
	)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "BAYERN_TICKER_FAILED",
			"failed to render Bavarian procurement ticker", "BayernTickerAdapter", "Fetch")
	}

	var listings []RawListing
	seen := make(map[string]bool)
	for _, item := range tickerItems {
		match := tickerEntryPattern.FindStringSubmatch(item)
		if match == nil {
			continue
		}

		title := strings.TrimSpace(match[1])
		authority := strings.TrimSpace(match[2])
		if len(title) <= 15 || seen[title] {
			continue
		}
		seen[title] = true

		listings = append(listings, RawListing{
			Title:       title,
			Authority:   authority,
			Platform:    "Vergabe Bayern",
			PlatformURL: bayernTickerURL,
			Region:      "Bayern",
			Country:     "Germany",
		})
	}

	a.logger.WithFields(logrus.Fields{
		"ticker_items":  len(tickerItems),
		"listing_count": len(listings),
	}).Info("Fetched Bavarian ticker listings")

	return listings, nil
}
