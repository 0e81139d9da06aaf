// Package testutil builds synthetic Scholar profile pages for tests.
package testutil

import (
	"fmt"
	"html"
	"strings"
)

// Row is one article row. Fields listed in Omit ("title", "authors",
// "venue", "year") are left out of the markup entirely.
type Row struct {
	Title   string
	Href    string
	Authors string
	Venue   string
	Year    string
	Omit    []string
}

func (r Row) omitted(field string) bool {
	for _, f := range r.Omit {
		if f == field {
			return true
		}
	}
	return false
}

// Page describes a profile page. Empty author subfields are left out of
// the markup; a nil Metrics leaves out the stats table.
type Page struct {
	Name        string
	NoName      bool
	Position    string
	Email       string
	Departments []string
	Rows        []Row
	// Metrics rows in page order (citations, h-index, i10-index), each
	// holding the value cells (all, since).
	Metrics [][]string
}

// FullMetrics returns a complete metrics table.
func FullMetrics(citationsAll, citationsSince, hAll, hSince, iAll, iSince string) [][]string {
	return [][]string{
		{citationsAll, citationsSince},
		{hAll, hSince},
		{iAll, iSince},
	}
}

var metricLabels = []string{"Citations", "h-index", "i10-index"}

// HTML renders the page.
func (p Page) HTML() string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html><head><title>Profile</title></head><body>\n")

	b.WriteString(`<div id="gsc_prf_i">` + "\n")
	if !p.NoName {
		fmt.Fprintf(&b, `  <div id="gsc_prf_inw"><div id="gsc_prf_in">%s</div></div>`+"\n", html.EscapeString(p.Name))
	}
	if p.Position != "" {
		fmt.Fprintf(&b, `  <div class="gsc_prf_il">%s</div>`+"\n", html.EscapeString(p.Position))
	}
	if p.Email != "" {
		fmt.Fprintf(&b, `  <div class="gsc_prf_il" id="gsc_prf_ivh">%s</div>`+"\n", html.EscapeString(p.Email))
	}
	if len(p.Departments) > 0 {
		b.WriteString(`  <div class="gsc_prf_il" id="gsc_prf_int">`)
		for _, d := range p.Departments {
			fmt.Fprintf(&b, `<a class="gsc_prf_inta" href="#">%s</a>`, html.EscapeString(d))
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")

	if p.Metrics != nil {
		b.WriteString(`<table id="gsc_rsb_st"><thead><tr><th class="gsc_rsb_sth"></th><th class="gsc_rsb_sth">All</th><th class="gsc_rsb_sth">Since 2017</th></tr></thead><tbody>` + "\n")
		for i, cells := range p.Metrics {
			label := "Metric"
			if i < len(metricLabels) {
				label = metricLabels[i]
			}
			fmt.Fprintf(&b, `<tr><td class="gsc_rsb_sc1"><a class="gsc_rsb_f">%s</a></td>`, label)
			for _, c := range cells {
				fmt.Fprintf(&b, `<td class="gsc_rsb_std">%s</td>`, html.EscapeString(c))
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</tbody></table>\n")
	}

	b.WriteString(`<table id="gsc_a_t"><tbody id="gsc_a_b">` + "\n")
	for _, r := range p.Rows {
		b.WriteString(`<tr class="gsc_a_tr"><td class="gsc_a_t">`)
		if !r.omitted("title") {
			fmt.Fprintf(&b, `<a href="%s" class="gsc_a_at">%s</a>`, html.EscapeString(r.Href), html.EscapeString(r.Title))
		}
		if !r.omitted("authors") {
			fmt.Fprintf(&b, `<div class="gs_gray">%s</div>`, html.EscapeString(r.Authors))
		}
		if !r.omitted("venue") {
			fmt.Fprintf(&b, `<div class="gs_gray">%s</div>`, html.EscapeString(r.Venue))
		}
		b.WriteString(`</td><td class="gsc_a_c"><a class="gsc_a_ac gs_ibl"></a></td><td class="gsc_a_y">`)
		if !r.omitted("year") {
			fmt.Fprintf(&b, `<span class="gsc_a_h gsc_a_hc gs_ibl">%s</span>`, html.EscapeString(r.Year))
		}
		b.WriteString("</td></tr>\n")
	}
	b.WriteString("</tbody></table>\n</body></html>\n")

	return b.String()
}

// ResearcherPage is the canonical single-publication profile used across
// tests.
func ResearcherPage() Page {
	return Page{
		Name:        "A. Researcher",
		Position:    "Professor of Computing",
		Email:       "Verified email at example.edu",
		Departments: []string{"Machine Learning"},
		Rows: []Row{{
			Title:   "Paper X",
			Href:    "/citations?x=1",
			Authors: "A. Researcher, B. Coauthor",
			Venue:   "Journal Y, 2020",
			Year:    "2020",
		}},
		Metrics: FullMetrics("150", "90", "7", "5", "6", "4"),
	}
}
