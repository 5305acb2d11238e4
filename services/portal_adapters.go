package services

import (
	"context"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/config"
	"github.com/grovellows/tender-backend/shared"
)

// Portal describes one procurement platform scraped with the generic HTML
// adapter. MinTitleLength filters out navigation links and boilerplate that
// would otherwise be mistaken for tender titles.
type Portal struct {
	Key            string
	Name           string
	URL            string
	Region         string
	Country        string
	MinTitleLength int
}

// StatePortals are the German state-level procurement platforms.
var StatePortals = []Portal{
	{"bayern", "Vergabe Bayern", "https://www.auftraege.bayern.de/NetServer/index.jsp", "Bayern", "Germany", 15},
	{"nrw", "e-Vergabe NRW", "https://www.evergabe.nrw.de/VMPSatellite/public/company/project/search.do", "Nordrhein-Westfalen", "Germany", 20},
	{"berlin", "Vergabeplattform Berlin", "https://www.berlin.de/vergabeplattform/veroeffentlichungen/bekanntmachungen/", "Berlin", "Germany", 15},
	{"hamburg", "Vergabe Hamburg", "https://fbhh-evergabe.web.hamburg.de/evergabe.bieter/eva/supplierportal/fhh/subproject/search", "Hamburg", "Germany", 15},
	{"sachsen", "Vergabe Sachsen", "https://www.sachsen-vergabe.de/Satellite/public/company/project/search.do", "Sachsen", "Germany", 15},
	{"bw", "Vergabe Baden-Württemberg", "https://www.vergabe.landbw.de/NetServer/index.jsp", "Baden-Württemberg", "Germany", 15},
	{"hessen", "HAD Hessen", "https://www.had.de/onlinesuche.html", "Hessen", "Germany", 15},
	{"niedersachsen", "Vergabe Niedersachsen", "https://vergabe.niedersachsen.de/Satellite/public/company/project/search.do", "Niedersachsen", "Germany", 15},
	{"bremen", "Vergabe Bremen", "https://vergabe.bremen.de/NetServer/index.jsp", "Bremen", "Germany", 15},
	{"brandenburg", "Vergabe Brandenburg", "https://vergabemarktplatz.brandenburg.de/VMPSatellite/public/company/project/search.do", "Brandenburg", "Germany", 15},
	{"rlp", "Vergabe Rheinland-Pfalz", "https://www.vergabe.rlp.de/VMPSatellite/public/company/project/search.do", "Rheinland-Pfalz", "Germany", 15},
	{"saarland", "Vergabe Saarland", "https://www.vergabe.saarland.de/NetServer/index.jsp", "Saarland", "Germany", 15},
	{"sachsen_anhalt", "Vergabe Sachsen-Anhalt", "https://www.evergabe.sachsen-anhalt.de/NetServer/index.jsp", "Sachsen-Anhalt", "Germany", 15},
	{"sh", "Vergabe Schleswig-Holstein", "https://www.e-vergabe-sh.de/NetServer/index.jsp", "Schleswig-Holstein", "Germany", 15},
	{"thueringen", "Vergabe Thüringen", "https://www.vergabe.thueringen.de/onlinesuche", "Thüringen", "Germany", 15},
}

// NationalPortals aggregate tenders across all states.
var NationalPortals = []Portal{
	{"dtvp", "DTVP", "https://www.dtvp.de/Satellite/public/company/project/search.do", "", "Germany", 15},
	{"evergabe", "e-Vergabe Online", "https://www.evergabe-online.de", "", "Germany", 15},
	{"oeffentliche", "Öffentliche Vergabe", "https://www.oeffentlichevergabe.de", "", "Germany", 15},
	{"ausschreibungen_de", "Ausschreibungen Deutschland", "https://www.ausschreibungen-deutschland.de", "", "Germany", 15},
}

// HospitalPortals are large clinic operators that publish construction
// tenders on their own sites.
var HospitalPortals = []Portal{
	{"charite", "Charité Berlin", "https://www.charite.de/service/ausschreibungen/", "Berlin", "Germany", 15},
	{"vivantes", "Vivantes Berlin", "https://www.vivantes.de/unternehmen/ausschreibungen/", "Berlin", "Germany", 15},
	{"uke", "UKE Hamburg", "https://www.uke.de/organisationsstruktur/zentrale-bereiche/ausschreibungen/", "Hamburg", "Germany", 15},
	{"fraunhofer", "Fraunhofer", "https://www.fraunhofer.de/de/ueber-fraunhofer/beschaffung-einkauf/ausschreibungen.html", "", "Germany", 15},
}

// SwissPortal is the Swiss public procurement platform.
var SwissPortal = Portal{"simap", "simap.ch", "https://www.simap.ch", "", "Switzerland", 15}

// PortalAdapter scrapes a procurement portal's listing page with generic
// selectors. Portals that need page interaction or dedicated parsing get
// their own adapter type instead.
type PortalAdapter struct {
	portal      Portal
	logger      *logrus.Entry
	rateLimiter *shared.HTTPRequestRateLimiter
	cfg         config.ScraperConfig
}

func NewPortalAdapter(portal Portal, rateLimiter *shared.HTTPRequestRateLimiter, cfg config.ScraperConfig) *PortalAdapter {
	return &PortalAdapter{
		portal: portal,
		logger: logrus.WithFields(logrus.Fields{
			"component": "PortalAdapter",
			"portal":    portal.Key,
		}),
		rateLimiter: rateLimiter,
		cfg:         cfg,
	}
}

func (a *PortalAdapter) Name() string     { return a.portal.Key }
func (a *PortalAdapter) Platform() string { return a.portal.Name }

// Fetch loads the portal's listing page and extracts candidate tenders from
// links and table rows.
func (a *PortalAdapter) Fetch(ctx context.Context) ([]RawListing, error) {
	a.rateLimiter.EnforceRateLimit()

	collector := colly.NewCollector()
	collector.SetRequestTimeout(a.cfg.RequestTimeout)

	collector.OnRequest(func(r *colly.Request) {
		shared.SetCollyBrowserHeaders(r)
	})

	var listings []RawListing
	seen := make(map[string]bool)

	appendListing := func(title, description, detailURL string) {
		title = strings.TrimSpace(title)
		if len(title) <= a.portal.MinTitleLength || seen[title] {
			return
		}
		seen[title] = true
		listings = append(listings, RawListing{
			Title:       title,
			Description: strings.TrimSpace(description),
			DetailURL:   detailURL,
			Platform:    a.portal.Name,
			PlatformURL: a.portal.URL,
			Region:      a.portal.Region,
			Country:     a.portal.Country,
		})
	}

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		appendListing(e.Text, "", e.Request.AbsoluteURL(e.Attr("href")))
	})

	collector.OnHTML("table tr", func(e *colly.HTMLElement) {
		cells := e.ChildTexts("td")
		if len(cells) == 0 {
			return
		}
		description := ""
		if len(cells) > 1 {
			description = strings.Join(cells[1:], " ")
		}
		link := e.ChildAttr("a[href]", "href")
		if link != "" {
			link = e.Request.AbsoluteURL(link)
		}
		appendListing(cells[0], description, link)
	})

	var fetchErr error
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = shared.WrapError(err, shared.ErrorCategoryNetwork, "PORTAL_FETCH_FAILED",
			"failed to fetch portal listing page", "PortalAdapter", a.portal.Key)
	})

	if err := collector.Visit(a.portal.URL); err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "PORTAL_VISIT_FAILED",
			"failed to visit portal", "PortalAdapter", a.portal.Key)
	}
	collector.Wait()

	if fetchErr != nil && len(listings) == 0 {
		return nil, fetchErr
	}

	a.logger.WithField("listing_count", len(listings)).Info("Fetched portal listings")
	return listings, nil
}

// BundAdapter scrapes the federal procurement search on service.bund.de. The
// result page has a stable structure, so it gets dedicated selectors instead
// of the generic portal parsing.
type BundAdapter struct {
	logger      *logrus.Entry
	rateLimiter *shared.HTTPRequestRateLimiter
	cfg         config.ScraperConfig
	searchTerms []string
}

func NewBundAdapter(rateLimiter *shared.HTTPRequestRateLimiter, cfg config.ScraperConfig) *BundAdapter {
	return &BundAdapter{
		logger:      logrus.WithField("component", "BundAdapter"),
		rateLimiter: rateLimiter,
		cfg:         cfg,
		searchTerms: []string{"Projektsteuerung", "Projektmanagement", "Bauüberwachung"},
	}
}

func (a *BundAdapter) Name() string     { return "bund" }
func (a *BundAdapter) Platform() string { return "Bund.de" }

func (a *BundAdapter) Fetch(ctx context.Context) ([]RawListing, error) {
	var listings []RawListing
	seen := make(map[string]bool)
	var lastErr error

	for i, term := range a.searchTerms {
		if i > 0 {
			if err := waitForContext(ctx, a.cfg.PortalDelay); err != nil {
				return listings, err
			}
		}

		a.rateLimiter.EnforceRateLimit()

		collector := colly.NewCollector()
		collector.SetRequestTimeout(a.cfg.RequestTimeout)
		collector.OnRequest(func(r *colly.Request) {
			shared.SetCollyBrowserHeaders(r)
		})

		collector.OnHTML("div.result-list article, li.result-item, div.teaser", func(e *colly.HTMLElement) {
			title := strings.TrimSpace(e.ChildText("h3, h2, a.result-title"))
			if len(title) <= 15 || seen[title] {
				return
			}
			seen[title] = true

			link := e.ChildAttr("a[href]", "href")
			if link != "" {
				link = e.Request.AbsoluteURL(link)
			}

			listings = append(listings, RawListing{
				Title:        title,
				Description:  strings.TrimSpace(e.ChildText("p, div.description")),
				Authority:    strings.TrimSpace(e.ChildText("span.authority, div.publisher")),
				DeadlineText: strings.TrimSpace(e.ChildText("span.deadline, time")),
				DetailURL:    link,
				Platform:     "Bund.de",
				PlatformURL:  "https://www.service.bund.de",
				Country:      "Germany",
			})
		})

		collector.OnError(func(r *colly.Response, err error) {
			lastErr = err
		})

		searchURL := "https://www.service.bund.de/Content/DE/Ausschreibungen/Suche/Ergebnis.html?nn=4641482&searchText=" + term
		if err := collector.Visit(searchURL); err != nil {
			lastErr = err
			continue
		}
		collector.Wait()
	}

	if len(listings) == 0 && lastErr != nil {
		return nil, shared.WrapError(lastErr, shared.ErrorCategoryNetwork, "BUND_FETCH_FAILED",
			"failed to fetch federal tender search", "BundAdapter", "Fetch")
	}

	a.logger.WithField("listing_count", len(listings)).Info("Fetched federal tender listings")
	return listings, nil
}

// waitForContext sleeps for d or until ctx is cancelled.
func waitForContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
