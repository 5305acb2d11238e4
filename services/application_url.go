package services

import (
	"fmt"
	"net/url"
)

// maxSearchTitleLength caps the tender title used in portal search links so
// generated URLs stay within what the portals accept.
const maxSearchTitleLength = 80

// portalSearchTemplates maps platform names to search URL templates. %s is
// replaced with the URL-encoded tender title.
var portalSearchTemplates = map[string]string{
	"Vergabe Bayern":             "https://www.auftraege.bayern.de/NetServer/index.jsp?searchText=%s",
	"e-Vergabe NRW":              "https://www.evergabe.nrw.de/VMPSatellite/public/company/project/search.do?q=%s",
	"Vergabeplattform Berlin":    "https://www.berlin.de/vergabeplattform/veroeffentlichungen/bekanntmachungen/?q=%s",
	"Vergabe Hamburg":            "https://fbhh-evergabe.web.hamburg.de/evergabe.bieter/eva/supplierportal/fhh/subproject/search?searchText=%s",
	"Vergabe Sachsen":            "https://www.sachsen-vergabe.de/Satellite/public/company/project/search.do?search=%s",
	"Vergabe Baden-Württemberg":  "https://www.vergabe.landbw.de/NetServer/index.jsp?searchText=%s",
	"HAD Hessen":                 "https://www.had.de/onlinesuche.html?searchText=%s",
	"Vergabe Niedersachsen":      "https://vergabe.niedersachsen.de/Satellite/public/company/project/search.do?search=%s",
	"Vergabe Bremen":             "https://vergabe.bremen.de/NetServer/index.jsp?searchText=%s",
	"Vergabe Brandenburg":        "https://vergabemarktplatz.brandenburg.de/VMPSatellite/public/company/project/search.do?q=%s",
	"Vergabe Rheinland-Pfalz":    "https://www.vergabe.rlp.de/VMPSatellite/public/company/project/search.do?q=%s",
	"Vergabe Saarland":           "https://www.vergabe.saarland.de/NetServer/index.jsp?searchText=%s",
	"Vergabe Sachsen-Anhalt":     "https://www.evergabe.sachsen-anhalt.de/NetServer/index.jsp?searchText=%s",
	"Vergabe Schleswig-Holstein": "https://www.e-vergabe-sh.de/NetServer/index.jsp?searchText=%s",
	"Vergabe Thüringen":          "https://www.vergabe.thueringen.de/onlinesuche?search=%s",
	"Bund.de":                    "https://www.service.bund.de/Content/DE/Ausschreibungen/Suche/Ergebnis.html?searchText=%s",
	"TED Europa":                 "https://ted.europa.eu/de/search/result?q=%s",
	"DTVP":                       "https://www.dtvp.de/Satellite/public/company/project/search.do?search=%s",
	"Öffentliche Vergabe":        "https://www.oeffentlichevergabe.de/search?q=%s",
	"Ausschreibungen Deutschland": "https://www.ausschreibungen-deutschland.de/suche?q=%s",
	"e-Vergabe Online":           "https://www.evergabe-online.de/search.html?searchText=%s",
	"ibau":                       "https://www.ibau.de/suche/?q=%s",
	"Charité Berlin":             "https://www.charite.de/service/ausschreibungen/?q=%s",
	"Vivantes Berlin":            "https://www.vivantes.de/unternehmen/ausschreibungen/?q=%s",
	"UKE Hamburg":                "https://www.uke.de/organisationsstruktur/zentrale-bereiche/ausschreibungen/?q=%s",
	"Fraunhofer":                 "https://www.fraunhofer.de/de/ueber-fraunhofer/beschaffung-einkauf/ausschreibungen.html?q=%s",
	"simap.ch":                   "https://www.simap.ch/shabforms/COMMON/search/searchresult.jsf?q=%s",
}

// portalFallbackURLs point at the portal landing page when no search template
// exists for the platform.
var portalFallbackURLs = map[string]string{
	"Vergabe Bayern":          "https://www.auftraege.bayern.de",
	"e-Vergabe NRW":           "https://www.evergabe.nrw.de",
	"Vergabeplattform Berlin": "https://www.berlin.de/vergabeplattform",
	"Bund.de":                 "https://www.service.bund.de",
	"TED Europa":              "https://ted.europa.eu",
	"simap.ch":                "https://www.simap.ch",
}

const defaultApplicationURL = "https://www.service.bund.de/Content/DE/Ausschreibungen/suche.html"

// BuildApplicationURL constructs a deep link into the source platform's
// search, pre-filled with the tender title. Unknown platforms get the portal
// landing page or, failing that, the federal tender search.
func BuildApplicationURL(platform, title string) string {
	searchTitle := title
	// Truncate on runes so umlauts at the cap are not split mid-sequence.
	if runes := []rune(searchTitle); len(runes) > maxSearchTitleLength {
		searchTitle = string(runes[:maxSearchTitleLength])
	}

	if template, ok := portalSearchTemplates[platform]; ok {
		return fmt.Sprintf(template, url.QueryEscape(searchTitle))
	}
	if fallback, ok := portalFallbackURLs[platform]; ok {
		return fallback
	}
	return defaultApplicationURL
}
