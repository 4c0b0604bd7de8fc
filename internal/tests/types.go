// Package tests loads golden parser cases: captured suite logs paired with
// the report they are expected to produce.
package tests

// Case is a single golden case loaded from a JSON file.
type Case struct {
	Name     string      // case name (from filename)
	Suite    string      // parser family (parent directory)
	Path     string      // full path to the case file
	Log      string      // captured raw log text
	Expected Expectation // report the parser must produce for Log
}

// Expectation is the expected parse result of a captured log.
type Expectation struct {
	Total    int                  `json:"total"`
	Failed   []string             `json:"failed"`
	Segments []SegmentExpectation `json:"segments"`
}

// SegmentExpectation is the expected parse result of one invocation segment.
type SegmentExpectation struct {
	Total     int      `json:"total"`
	Failed    []string `json:"failed"`
	Completed bool     `json:"completed"`
}

// Crashed returns the indices of segments expected to be incomplete.
func (e Expectation) Crashed() []int {
	var idx []int
	for i, s := range e.Segments {
		if !s.Completed {
			idx = append(idx, i)
		}
	}
	return idx
}
