package domain

import "time"

// TruckSummary is one truck's totals at the end of a run.
type TruckSummary struct {
	TruckID    int
	FinishedAt time.Time
	Miles      float64
	Delivered  int
}

// Report summarizes a completed dispatch run.
type Report struct {
	RunID        string
	Trucks       []TruckSummary
	TotalMiles   float64
	Rounds       int
	Delivered    int
	PackagesLeft int
	Late         []string
}
