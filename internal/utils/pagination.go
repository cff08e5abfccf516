// Package utils holds small paging helpers shared by the HTTP layer and the
// services. Page numbers are 1-based everywhere, matching the backend's
// assignment pages.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or invalid.
// Whitespace is not trimmed.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampPage bounds a requested page and page size. A non-positive size
// becomes def; sizes above max are capped.
func ClampPage(page, size, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = def
	}
	if max > 0 && size > max {
		size = max
	}
	return page, size
}

// Offset is the row offset of the first item on page.
func Offset(page, size int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * size
}
