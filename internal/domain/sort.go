package domain

import (
	"fmt"
	"strings"
)

// SortBy names an ordering for TripService.Sort.
type SortBy string

const (
	SortByID          SortBy = "id"
	SortByStartDate   SortBy = "start"
	SortByDestination SortBy = "destination"
	SortByBudgetAsc   SortBy = "budget"
	SortByBudgetDesc  SortBy = "budget-desc"
)

// SortCriteria lists every supported ordering, in menu order.
var SortCriteria = []SortBy{
	SortByID,
	SortByStartDate,
	SortByDestination,
	SortByBudgetAsc,
	SortByBudgetDesc,
}

// ParseSortBy converts user input into a SortBy.
// It is case-insensitive and also accepts the menu numbers 1-5.
func ParseSortBy(s string) (SortBy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, c := range SortCriteria {
		if s == string(c) || s == fmt.Sprint(i+1) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown sort criterion %q", ErrValidation, s)
}
