package dto

import "time"

type TruckResponse struct {
	TruckID    int       `json:"truck_id"`
	FinishedAt time.Time `json:"finished_at"`
	Miles      float64   `json:"miles"`
	Delivered  int       `json:"delivered"`
}

type RunResponse struct {
	RunID        string          `json:"run_id"`
	Trucks       []TruckResponse `json:"trucks"`
	TotalMiles   float64         `json:"total_miles"`
	Rounds       int             `json:"rounds"`
	Delivered    int             `json:"delivered"`
	PackagesLeft int             `json:"packages_left"`
	Late         []string        `json:"late"`
}
