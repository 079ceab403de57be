package shrink

import (
	"regexp"
	"strings"
)

// Presentation-only kwargs and comments add no structure; strip them
// textually so multi-line declarations stay otherwise intact.
var (
	helpKwargSingle   = regexp.MustCompile(`,?\s*help\s*=\s*'[^']*'`)
	helpKwargDouble   = regexp.MustCompile(`,?\s*help\s*=\s*"[^"]*"`)
	stringKwargSingle = regexp.MustCompile(`,?\s*string\s*=\s*'[^']*'`)
	stringKwargDouble = regexp.MustCompile(`,?\s*string\s*=\s*"[^"]*"`)
	danglingComma     = regexp.MustCompile(`,\s*\)`)
	trailingComment   = regexp.MustCompile(`#.*$`)
)

// cleanLine strips help text and comments from a declaration line when the
// request asks for metadata stripping.
func (s *shrinker) cleanLine(line string) string {
	if !s.req.StripMetadata {
		return line
	}
	line = helpKwargSingle.ReplaceAllString(line, "")
	line = helpKwargDouble.ReplaceAllString(line, "")
	return strings.TrimSpace(trailingComment.ReplaceAllString(fixCommas(line), ""))
}

// stripFieldMetadata removes help= and string= kwargs from a field line
// kept explicitly at level extreme.
func stripFieldMetadata(line string) string {
	line = helpKwargSingle.ReplaceAllString(line, "")
	line = helpKwargDouble.ReplaceAllString(line, "")
	line = stringKwargSingle.ReplaceAllString(line, "")
	line = stringKwargDouble.ReplaceAllString(line, "")
	return strings.TrimSpace(trailingComment.ReplaceAllString(fixCommas(line), ""))
}

func fixCommas(line string) string {
	line = strings.ReplaceAll(line, ", ,", ",")
	line = strings.ReplaceAll(line, ",, ", ", ")
	return danglingComma.ReplaceAllString(line, ")")
}
