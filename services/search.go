package services

import (
	"strings"
	"time"

	"instaclone/models"
)

const dateLayout = "2006-01-02"

// PostSearch is the raw post search form.
type PostSearch struct {
	Hashtag   string
	Category  string
	StartDate string
	EndDate   string
}

// Filter turns the form into a post filter. Dates are YYYY-MM-DD or
// RFC 3339; a date-only end date covers that whole day.
func (q PostSearch) Filter() (models.PostFilter, error) {
	f := models.PostFilter{
		Hashtag:  NormalizeHashtag(q.Hashtag),
		Category: strings.TrimSpace(q.Category),
	}
	if q.StartDate != "" {
		t, err := parseDate(q.StartDate, false)
		if err != nil {
			return models.PostFilter{}, newError(KindValidation, "Start date must be YYYY-MM-DD.")
		}
		f.From = &t
	}
	if q.EndDate != "" {
		t, err := parseDate(q.EndDate, true)
		if err != nil {
			return models.PostFilter{}, newError(KindValidation, "End date must be YYYY-MM-DD.")
		}
		f.To = &t
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return models.PostFilter{}, newError(KindValidation, "End date must not be before start date.")
	}
	return f, nil
}

func parseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
