package models

// DailyStats represents aggregated counts for a single day
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
