package scholar

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrStructuralMismatch means the page does not have the expected layout,
// usually because the request was blocked or Scholar changed its markup.
var ErrStructuralMismatch = errors.New("profile blocked or page structure changed")

const (
	selName        = "#gsc_prf_in"
	selPosition    = ".gsc_prf_il:not([id])"
	selEmail       = "#gsc_prf_ivh"
	selDepartments = "#gsc_prf_int"

	selRows      = "#gsc_a_b .gsc_a_tr"
	selTitle     = ".gsc_a_at"
	selAuthors   = ".gsc_a_at + .gs_gray"
	selVenue     = ".gs_gray + .gs_gray"
	selYear      = ".gsc_a_y span"
	selStatLabel = ".gsc_rsb_sc1"
	selStatValue = ".gsc_rsb_std"
)

// Extractor pulls structured profile data out of a Scholar profile page.
type Extractor struct {
	baseURL string
}

// NewExtractor creates an extractor that resolves publication links
// against baseURL (e.g. https://scholar.google.com).
func NewExtractor(baseURL string) *Extractor {
	return &Extractor{baseURL: strings.TrimRight(baseURL, "/")}
}

// Extract parses html and returns the raw (untrimmed) profile.
// Only a missing name anchor is an error; every other absence degrades
// to an empty value.
func (e *Extractor) Extract(html []byte) (*Profile, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	author, err := extractAuthor(doc)
	if err != nil {
		return nil, err
	}

	return &Profile{
		Author:       author,
		Publications: e.extractPublications(doc),
		Metrics:      extractMetrics(doc),
	}, nil
}

func extractAuthor(doc *goquery.Document) (AuthorProfile, error) {
	name := doc.Find(selName).First()
	if name.Length() == 0 {
		return AuthorProfile{}, ErrStructuralMismatch
	}

	return AuthorProfile{
		Name:        name.Text(),
		Position:    doc.Find(selPosition).First().Text(),
		Email:       doc.Find(selEmail).First().Text(),
		Departments: doc.Find(selDepartments).First().Text(),
	}, nil
}

// extractPublications reads every article row. Each field is an
// independent lookup: the title link, the gray line right after the title
// (authors), the gray line right after another gray line (venue), and the
// year cell. Without a title link there is no authors line.
func (e *Extractor) extractPublications(doc *goquery.Document) []Publication {
	pubs := []Publication{}

	doc.Find(selRows).Each(func(_ int, row *goquery.Selection) {
		var p Publication

		if title := row.Find(selTitle).First(); title.Length() > 0 {
			p.Title = title.Text()
			if href, ok := title.Attr("href"); ok && strings.TrimSpace(href) != "" {
				p.Link = e.baseURL + strings.TrimSpace(href)
			}
		}

		if authors := row.Find(selAuthors).First(); authors.Length() > 0 {
			p.Authors = authors.Text()
		}
		if venue := row.Find(selVenue).First(); venue.Length() > 0 {
			p.Publication = venue.Text()
		}

		if year := row.Find(selYear).First(); year.Length() > 0 {
			p.Year = year.Text()
		}

		pubs = append(pubs, p)
	})

	return pubs
}

// extractMetrics reads the stats table by row position. A single missing
// row or cell empties the whole table rather than returning partial data.
func extractMetrics(doc *goquery.Document) Metrics {
	rows := doc.Find("tr").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(selStatLabel).Length() > 0
	})

	metrics := Metrics{}
	for i, name := range metricOrder {
		if i >= rows.Length() {
			log.Printf("Metrics table incomplete: missing %s row", name)
			return Metrics{}
		}
		cells := rows.Eq(i).Find(selStatValue)
		if cells.Length() < 2 {
			log.Printf("Metrics table incomplete: %s row has %d value cells", name, cells.Length())
			return Metrics{}
		}
		metrics[name] = MetricValue{
			All:       cells.Eq(0).Text(),
			Since2017: cells.Eq(1).Text(),
		}
	}
	return metrics
}
