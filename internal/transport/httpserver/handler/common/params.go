package common

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

func ParseIntParam(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid int")
	}
	return parsed, nil
}

// PageParam reads ?page=, falling back to 1 on anything unusable.
func PageParam(r *http.Request) int {
	page, err := ParseIntParam(r.URL.Query().Get("page"), 1)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// OptionalString returns nil for blank values.
func OptionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
