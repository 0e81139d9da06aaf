package scholar

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Normalize trims every field and sorts publications newest first.
// Publications keep their page order within the same year.
func Normalize(p *Profile) {
	p.Author = AuthorProfile{
		Name:        strings.TrimSpace(p.Author.Name),
		Position:    strings.TrimSpace(p.Author.Position),
		Email:       strings.TrimSpace(p.Author.Email),
		Departments: strings.TrimSpace(p.Author.Departments),
	}

	for i, pub := range p.Publications {
		p.Publications[i] = Publication{
			Title:       strings.TrimSpace(pub.Title),
			Link:        strings.TrimSpace(pub.Link),
			Authors:     strings.TrimSpace(pub.Authors),
			Publication: strings.TrimSpace(pub.Publication),
			Year:        strings.TrimSpace(pub.Year),
		}
	}

	sort.SliceStable(p.Publications, func(i, j int) bool {
		return YearValue(p.Publications[i].Year) > YearValue(p.Publications[j].Year)
	})

	metrics := make(Metrics, len(p.Metrics))
	for name, v := range p.Metrics {
		metrics[name] = MetricValue{
			All:       strings.TrimSpace(v.All),
			Since2017: strings.TrimSpace(v.Since2017),
		}
	}
	p.Metrics = metrics
}

// YearValue is the numeric sort key for a publication year; missing or
// unparseable years count as 0.
func YearValue(year string) int {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return 0
	}
	return y
}

// NewFetchResult stamps a normalized profile with the fetch time.
func NewFetchResult(p *Profile, fetchedAt time.Time) *FetchResult {
	pubs := p.Publications
	if pubs == nil {
		pubs = []Publication{}
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = Metrics{}
	}
	return &FetchResult{
		LastFetched:      fetchedAt.Format("2006-01-02"),
		LastFetchedEpoch: fetchedAt.Unix(),
		Author:           p.Author,
		Publications:     pubs,
		Metrics:          metrics,
	}
}
