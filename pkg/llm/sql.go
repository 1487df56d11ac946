package llm

import (
	"regexp"
	"strings"
)

// sqlFencePattern matches the first ```sql fenced block; the body may span lines.
var sqlFencePattern = regexp.MustCompile("(?s)```sql\\s*(.*?)\\s*```")

// ExtractSQL returns the trimmed body of the first ```sql fenced block in a
// model response. When no such block exists the response is returned
// unchanged and ok is false.
func ExtractSQL(response string) (sql string, ok bool) {
	matches := sqlFencePattern.FindStringSubmatch(response)
	if len(matches) < 2 {
		return response, false
	}
	return strings.TrimSpace(matches[1]), true
}
