package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// MakeKey builds the canonical cache key for a file or one of its pages.
// A negative pageNum addresses the file itself.
func MakeKey(fileID int64, pageNum int) string {
	if pageNum < 0 {
		return fmt.Sprintf("file:%d", fileID)
	}
	return fmt.Sprintf("file:%d:page:%d", fileID, pageNum)
}

// ParseKey is the inverse of MakeKey. It returns pageNum -1 for file keys
// and ok=false for keys in any other format.
func ParseKey(key string) (fileID int64, pageNum int, ok bool) {
	rest, found := strings.CutPrefix(key, "file:")
	if !found {
		return 0, 0, false
	}
	idPart, pagePart, hasPage := strings.Cut(rest, ":")
	fileID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	if !hasPage {
		return fileID, -1, true
	}
	numPart, found := strings.CutPrefix(pagePart, "page:")
	if !found {
		return 0, 0, false
	}
	pageNum, err = strconv.Atoi(numPart)
	if err != nil || pageNum < 0 {
		return 0, 0, false
	}
	return fileID, pageNum, true
}

// SearchKey builds the key for a search response. fileID 0 means the whole
// corpus. The ai_enabled flag is deliberately not part of the key: both
// variants share one cached body.
func SearchKey(query string, fileID int64) string {
	if fileID > 0 {
		return fmt.Sprintf("search:%s:%d", query, fileID)
	}
	return fmt.Sprintf("search:%s:all", query)
}

// RenderKey builds the key for a rendered page. format is "png" or "pdf".
func RenderKey(fileID int64, pageNum int, format string) string {
	return fmt.Sprintf("render:%d:%d:%s", fileID, pageNum, format)
}

// ListKey builds the key for a file-listing page.
func ListKey(page, limit int, name string) string {
	if name != "" {
		return fmt.Sprintf("list:p%d:l%d:n%s", page, limit, name)
	}
	return fmt.Sprintf("list:p%d:l%d", page, limit)
}
