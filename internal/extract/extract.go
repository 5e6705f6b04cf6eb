// Package extract turns pasted links into asset candidates for bulk import.
// HeuristicExtractor reads what it can from the URL itself (Google Maps
// coordinates and place names, Booking.com hotel slugs) without any
// network access. A model-backed extractor can replace it behind the same
// Extract method.
package extract

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkordes/hila-planner/internal/domain"
)

// Source identifies which site a link points at.
type Source string

const (
	SourceGoogleMaps Source = "google_maps"
	SourceBooking    Source = "booking"
	SourceUnknown    Source = "unknown"
)

// DetectSource classifies a link by host and path.
func DetectSource(rawURL string) Source {
	switch {
	case strings.Contains(rawURL, "google.com/maps"),
		strings.Contains(rawURL, "goo.gl/maps"),
		strings.Contains(rawURL, "maps.app.goo.gl"):
		return SourceGoogleMaps
	case strings.Contains(rawURL, "booking.com"):
		return SourceBooking
	}
	return SourceUnknown
}

// ParseURLs splits a pasted block of text into links, one per non-empty
// line. Lines without a scheme get "https://" when they look like a host
// name (contain a dot). Anything else is dropped.
func ParseURLs(text string) []string {
	out := []string{}
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = strings.TrimSpace(line)
		if line == "" || strings.ContainsAny(line, " \t") {
			continue
		}
		if isAbsoluteURL(line) {
			out = append(out, line)
			continue
		}
		if strings.Contains(line, "://") {
			continue
		}
		if strings.Contains(line, ".") && isAbsoluteURL("https://"+line) {
			out = append(out, "https://"+line)
		}
	}
	return out
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// bookingCountries maps the country segment of Booking.com hotel URLs to
// Hebrew country names.
var bookingCountries = map[string]string{
	"it": "איטליה",
	"fr": "צרפת",
	"es": "ספרד",
	"gr": "יוון",
	"jp": "יפן",
	"th": "תאילנד",
	"mv": "מלדיביים",
	"ch": "שוויץ",
	"gb": "בריטניה",
	"us": "ארצות הברית",
	"de": "גרמניה",
	"pt": "פורטוגל",
	"nl": "הולנד",
	"at": "אוסטריה",
	"tr": "טורקיה",
	"hr": "קרואטיה",
	"cz": "צ'כיה",
	"il": "ישראל",
	"ae": "איחוד האמירויות",
	"mx": "מקסיקו",
}

var (
	mapsAtCoords   = regexp.MustCompile(`@(-?\d+\.?\d*),(-?\d+\.?\d*)`)
	mapsBangCoords = regexp.MustCompile(`!3d(-?\d+\.?\d*)!4d(-?\d+\.?\d*)`)
	mapsPlace      = regexp.MustCompile(`/place/([^/@]+)`)
	mapsSearch     = regexp.MustCompile(`/search/([^/@]+)`)
	bookingHotel   = regexp.MustCompile(`/hotel/([a-z]{2})/([^.?]+)`)
	bookingCity    = regexp.MustCompile(`[?&](?:dest_id|city)=([^&]+)`)
)

// HeuristicExtractor builds candidates from the URL text alone.
type HeuristicExtractor struct{}

// Extract implements the import collaborator for one link.
func (HeuristicExtractor) Extract(ctx context.Context, rawURL string) (domain.AssetCandidate, error) {
	if err := ctx.Err(); err != nil {
		return domain.AssetCandidate{}, err
	}
	if !isAbsoluteURL(rawURL) {
		return domain.AssetCandidate{}, fmt.Errorf("extract: not a web link: %q", rawURL)
	}
	switch DetectSource(rawURL) {
	case SourceGoogleMaps:
		return fromGoogleMaps(rawURL), nil
	case SourceBooking:
		return fromBooking(rawURL), nil
	}
	return fromUnknown(rawURL), nil
}

func fromGoogleMaps(rawURL string) domain.AssetCandidate {
	c := domain.AssetCandidate{
		Type: string(domain.AssetAttraction),
		Tags: []string{"Google Maps", "לעדכן"},
	}
	c.Lat, c.Lng = mapsCoords(rawURL)

	name := firstGroup(mapsPlace, rawURL)
	if name == "" {
		name = firstGroup(mapsSearch, rawURL)
	}
	if name != "" {
		name = strings.ReplaceAll(unescape(name), "+", " ")
		c.Title = name
		c.DescriptionHe = name + " - מקום שנמצא דרך Google Maps. יש לבדוק פרטים נוספים ולעדכן את התיאור."
	} else {
		c.Title = "מקום מ-Google Maps"
		c.DescriptionHe = "מקום שנמצא דרך Google Maps. יש להשלים פרטים."
	}
	return c
}

func mapsCoords(rawURL string) (lat, lng *float64) {
	for _, re := range []*regexp.Regexp{mapsAtCoords, mapsBangCoords} {
		m := re.FindStringSubmatch(rawURL)
		if m == nil {
			continue
		}
		la, err1 := strconv.ParseFloat(m[1], 64)
		ln, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return &la, &ln
		}
	}
	return nil, nil
}

func fromBooking(rawURL string) domain.AssetCandidate {
	c := domain.AssetCandidate{
		Type: string(domain.AssetHotel),
		Tags: []string{"Booking.com", "מלון", "לעדכן"},
	}
	var name string
	if m := bookingHotel.FindStringSubmatch(rawURL); m != nil {
		c.Country = bookingCountries[m[1]]
		name = titleCase(strings.ReplaceAll(m[2], "-", " "))
	}
	c.City = unescape(firstGroup(bookingCity, rawURL))

	if name == "" {
		c.Title = "מלון מ-Booking.com"
		c.DescriptionHe = "מלון מ-Booking.com. יש להשלים פרטים."
		return c
	}
	c.Title = name
	c.DescriptionHe = name + " - מלון שנמצא דרך Booking.com."
	if c.Country != "" {
		c.DescriptionHe += " ממוקם ב" + c.Country + "."
	}
	c.DescriptionHe += " יש לבדוק דירוג ולעדכן תיאור מפורט."
	return c
}

func fromUnknown(rawURL string) domain.AssetCandidate {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}
	label, origin := host, host
	if host == "" {
		label, origin = "אתר חיצוני", rawURL
	}
	return domain.AssetCandidate{
		Title:         "קישור מ-" + label,
		Type:          string(domain.AssetAttraction),
		DescriptionHe: "נכס שיובא מ-" + origin + ". יש להשלים את כל הפרטים ידנית.",
		Tags:          []string{"יובא", "לעדכן"},
	}
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// unescape percent-decodes s, returning it unchanged when malformed.
func unescape(s string) string {
	if out, err := url.PathUnescape(s); err == nil {
		return out
	}
	return s
}

// titleCase upper-cases the first letter of every word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
