package testparser

import (
	"strconv"
	"strings"

	"github.com/acarl005/stripansi"
	"go.uber.org/zap"
)

// Markers in googletest-style output.
const (
	// BoundaryMarker terminates every invocation written to a raw suite log.
	BoundaryMarker = "***UNIT_TEST_FINISHED***"

	// TeardownMarker precedes the final result block of an invocation.
	// Everything before its last occurrence is interleaved test chatter.
	TeardownMarker = "[----------] Global test environment tear-down"

	// CountMarker prefixes the "N tests from M test suites ran." line.
	CountMarker = "[==========] "

	// FailedMarker prefixes every failing test record.
	FailedMarker = "[  FAILED  ] "

	// restatementPhrase marks the "N tests, listed below:" header line,
	// which is not a test record.
	restatementPhrase = "listed below"
)

// GTestParser parses googletest output captured from one or more invocations.
type GTestParser struct {
	log *zap.Logger
}

// NewGTestParser creates a parser that reports non-fatal problems to log.
// A nil logger discards them.
func NewGTestParser(log *zap.Logger) *GTestParser {
	if log == nil {
		log = zap.NewNop()
	}
	return &GTestParser{log: log}
}

// Name returns the parser name.
func (p *GTestParser) Name() string {
	return "gtest"
}

// Parse splits output on BoundaryMarker and parses every segment. A
// trailing empty segment after the last marker is ignored, so a log of n
// invocations yields n segments. Output without any marker is a single segment.
//
// Parse is deterministic: identical input always yields an identical Report.
func (p *GTestParser) Parse(output string) Report {
	var report Report
	for i, raw := range SplitSegments(output) {
		report.Add(p.ParseSegment(i, raw))
	}
	return report
}

// SplitSegments splits raw log text into per-invocation segments.
func SplitSegments(output string) []string {
	parts := strings.Split(output, BoundaryMarker)
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// ParseSegment parses the output of a single invocation. index is only used
// for diagnostics.
func (p *GTestParser) ParseSegment(index int, raw string) Segment {
	text := stripansi.Strip(raw)

	idx := strings.LastIndex(text, TeardownMarker)
	if idx == -1 {
		return Segment{}
	}

	seg := Segment{Completed: true}
	for _, line := range strings.Split(text[idx:], "\n") {
		line = strings.TrimRight(line, "\r")

		if pos := strings.Index(line, CountMarker); pos != -1 {
			n, err := parseCount(line[pos+len(CountMarker):])
			if err != nil {
				p.log.Warn("cannot parse test count",
					zap.Int("segment", index),
					zap.String("line", line),
					zap.Error(err))
			} else {
				seg.Total += n
			}
		}

		if strings.Contains(line, FailedMarker) && !strings.Contains(line, restatementPhrase) {
			if name := extractTestName(line); name != "" {
				seg.Failed = append(seg.Failed, name)
			}
		}
	}
	return seg
}

// parseCount returns the first numeric token of s, which may be written as
// "42 tests ..." or "[42] tests ...".
func parseCount(s string) (int, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, strconv.ErrSyntax
	}
	token := strings.TrimSuffix(strings.TrimPrefix(fields[0], "["), "]")
	return strconv.Atoi(token)
}

// extractTestName strips the failure marker, drops the parameterized-instance
// suffix starting at the first comma and trims trailing carriage returns.
//
//	[  FAILED  ] Foo.Bar, where GetParam() = 4  ->  Foo.Bar
func extractTestName(line string) string {
	pos := strings.Index(line, FailedMarker)
	name := line[pos+len(FailedMarker):]
	if comma := strings.IndexByte(name, ','); comma != -1 {
		name = name[:comma]
	}
	name = strings.TrimRight(name, "\r")
	return strings.TrimSpace(name)
}
