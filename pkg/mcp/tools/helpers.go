package tools

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// trimString removes leading and trailing whitespace from a string.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// getOptionalFloat extracts an optional number argument from the request.
func getOptionalFloat(req mcp.CallToolRequest, key string) (float64, bool) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return 0, false
	}
	val, ok := args[key].(float64)
	return val, ok
}

// getOptionalBool extracts an optional boolean argument, falling back to defaultVal.
func getOptionalBool(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return defaultVal
	}
	val, ok := args[key].(bool)
	if !ok {
		return defaultVal
	}
	return val
}
