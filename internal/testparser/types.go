// Package testparser turns captured test-suite output into structured reports.
package testparser

// Segment is the parsed result of a single invocation, i.e. the text between
// two invocation boundary markers.
type Segment struct {
	Total  int      // tests reported by the count line(s) after teardown
	Failed []string // failing test identifiers, in output order
	// Completed is true if the segment contains the environment teardown
	// marker. A segment without it is treated as a crashed invocation.
	Completed bool
}

// Report holds the accumulated result of every invocation in a log.
type Report struct {
	Total    int
	Failed   []string
	Segments []Segment
}

// Add appends a segment to the report, aggregating totals and failures.
// Duplicate failure names are preserved.
func (r *Report) Add(seg Segment) {
	r.Total += seg.Total
	r.Failed = append(r.Failed, seg.Failed...)
	r.Segments = append(r.Segments, seg)
}

// Parser defines the interface for test output parsers.
type Parser interface {
	// Parse extracts the test total and failing test names from raw output
	// made of one or more invocation segments.
	Parse(output string) Report
	// Name returns the name of the parser.
	Name() string
}
