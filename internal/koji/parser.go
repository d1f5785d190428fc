package koji

import (
	"iter"
	"regexp"
	"strconv"
)

const (
	missingStatusMessageConstant  = "build row has no matching state icon"
	invalidBuildIDMessageConstant = "build identifier is not a number"
)

var (
	buildRowPattern  = regexp.MustCompile(`<td><a href="buildinfo\?buildID=(\d+)">([^<]+)</a></td>`)
	stateIconPattern = regexp.MustCompile(`<img class="stateimg" src="/koji-static/images/\w+\.png" title="(\w+)" alt="\w+"/>`)
)

// ParseBuilds extracts builds from a koji search result page in page order.
//
// Build rows and state icons are matched positionally. A row without a state icon at the same
// index yields a ParseError and ends the sequence; surplus icons are ignored. The page is scanned
// once, on the first iteration, and the sequence is not meant to be ranged over twice.
func ParseBuilds(page string) iter.Seq2[Build, error] {
	return func(yield func(Build, error) bool) {
		buildRows := buildRowPattern.FindAllStringSubmatch(page, -1)
		stateIcons := stateIconPattern.FindAllStringSubmatch(page, -1)

		for rowIndex, buildRow := range buildRows {
			if rowIndex >= len(stateIcons) {
				yield(Build{}, ParseError{Input: buildRow[2], Message: missingStatusMessageConstant})
				return
			}

			build, buildError := parseBuildRow(buildRow[1], buildRow[2], stateIcons[rowIndex][1])
			if buildError != nil {
				yield(Build{}, buildError)
				return
			}
			if !yield(build, nil) {
				return
			}
		}
	}
}

func parseBuildRow(identifierText string, nevr string, statusText string) (Build, error) {
	identifier, conversionError := strconv.ParseInt(identifierText, 10, 64)
	if conversionError != nil {
		return Build{}, ParseError{Input: identifierText, Message: invalidBuildIDMessageConstant}
	}
	status, statusError := ParseBuildStatus(statusText)
	if statusError != nil {
		return Build{}, statusError
	}
	return NewBuild(nevr, identifier, status)
}
