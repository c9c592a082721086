package dto

import "time"

type PackageResponse struct {
	PackageID     string     `json:"package_id"`
	Address       string     `json:"address"`
	Deadline      time.Time  `json:"deadline"`
	Tier          string     `json:"tier"`
	WeightKg      float64    `json:"weight_kg"`
	RequiredTruck int        `json:"required_truck,omitempty"`
	Status        string     `json:"status"`
	ReleaseAt     *time.Time `json:"release_at,omitempty"`
	AtHubAt       *time.Time `json:"at_hub_at"`
	EnRouteAt     *time.Time `json:"en_route_at"`
	DeliveredAt   *time.Time `json:"delivered_at"`
	TruckID       int        `json:"truck_id,omitempty"`
	OnTime        *bool      `json:"on_time,omitempty"`
}

type ListPackagesResponse struct {
	At       time.Time         `json:"at"`
	Packages []PackageResponse `json:"packages"`
}
