package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func StringToID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

// ParseIDList parses a comma separated query value such as "1,2,3".
// Blank segments are skipped.
func ParseIDList(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := StringToID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// EscapeLike makes s match literally inside a LIKE pattern using ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, raw)
}

// ParseShowTime accepts RFC3339 as well as the "2006-01-02 15:04:05" form.
func ParseShowTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid show time %q", raw)
}

type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Pagination) TotalPages(total int64) int64 {
	return (total + int64(p.Limit) - 1) / int64(p.Limit)
}

func ParsePagination(page, limit string) (Pagination, error) {
	pageNum, err := StringToInt(page)
	if err != nil || pageNum < 1 {
		return Pagination{}, fmt.Errorf("invalid page number")
	}

	limitNum, err := StringToInt(limit)
	if err != nil || limitNum < 1 || limitNum > 100 {
		return Pagination{}, fmt.Errorf("invalid limit")
	}

	return Pagination{Page: pageNum, Limit: limitNum}, nil
}
