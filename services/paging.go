package services

import (
	"fmt"
	"math"
	"strconv"

	"instaclone/models"
)

// MaxSkip bounds the skip query value so that skip+limit cannot overflow.
const MaxSkip = math.MaxInt32

// Paging holds the page size bounds for listings.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// Page parses raw skip/limit query values. Empty values take the defaults;
// anything unparsable or out of bounds is a validation error.
func (p Paging) Page(skip, limit string) (models.Page, error) {
	page := models.Page{Skip: 0, Limit: p.DefaultLimit}

	if skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 || n > MaxSkip {
			return models.Page{}, newError(KindValidation,
				fmt.Sprintf("skip must be an integer between 0 and %d.", MaxSkip))
		}
		page.Skip = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > p.MaxLimit {
			return models.Page{}, newError(KindValidation,
				fmt.Sprintf("limit must be between 1 and %d.", p.MaxLimit))
		}
		page.Limit = n
	}
	return page, nil
}
