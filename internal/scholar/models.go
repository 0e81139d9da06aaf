package scholar

// AuthorProfile holds the identity block at the top of a profile page.
// Absent fields are empty strings.
type AuthorProfile struct {
	Name        string `json:"name"`
	Position    string `json:"position"`
	Email       string `json:"email"`
	Departments string `json:"departments"`
}

// Publication is one row of the profile's article table. Empty fields are
// omitted from JSON entirely.
type Publication struct {
	Title       string `json:"title,omitempty"`
	Link        string `json:"link,omitempty"`
	Authors     string `json:"authors,omitempty"`
	Publication string `json:"publication,omitempty"`
	Year        string `json:"year,omitempty"`
}

// MetricValue is one row of the citation metrics table.
type MetricValue struct {
	All       string `json:"all"`
	Since2017 string `json:"since_2017"`
}

// Metrics maps metric names (citations, h_index, i_index) to values.
// It is either fully populated or empty.
type Metrics map[string]MetricValue

const (
	MetricCitations = "citations"
	MetricHIndex    = "h_index"
	MetricIIndex    = "i_index"
)

// metricOrder is the row order of the metrics table on the page.
var metricOrder = []string{MetricCitations, MetricHIndex, MetricIIndex}

var metricLabels = map[string]string{
	MetricCitations: "Citations",
	MetricHIndex:    "h-index",
	MetricIIndex:    "i10-index",
}

// MetricRow is a metric paired with its display label.
type MetricRow struct {
	Name  string
	Label string
	Value MetricValue
}

// Rows returns the populated metrics in page order.
func (m Metrics) Rows() []MetricRow {
	var rows []MetricRow
	for _, name := range metricOrder {
		v, ok := m[name]
		if !ok {
			continue
		}
		rows = append(rows, MetricRow{Name: name, Label: metricLabels[name], Value: v})
	}
	return rows
}

// Profile is everything extracted from one profile page.
type Profile struct {
	Author       AuthorProfile
	Publications []Publication
	Metrics      Metrics
}

// FetchResult is the document written to the primary JSON artifact.
type FetchResult struct {
	LastFetched      string        `json:"_lastFetched"`
	LastFetchedEpoch int64         `json:"_lastFetchedEpoch"`
	Author           AuthorProfile `json:"author"`
	Publications     []Publication `json:"publications"`
	Metrics          Metrics       `json:"metrics"`
}
