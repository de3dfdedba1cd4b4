package domain

import "time"

// Link maps a short code to its target URL.
type Link struct {
	Code      string
	URL       string
	CreatedBy string // username of the admin who shortened it
	CreatedAt time.Time
	UpdatedAt time.Time
}
