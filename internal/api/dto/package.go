package dto

// Times are wall-clock strings such as "10:25 AM".
type PackageResponse struct {
	PackageID   int               `json:"package_id"`
	Destination string            `json:"destination"`
	Deadline    string            `json:"deadline"`
	Weight      float64           `json:"weight"`
	Note        string            `json:"note,omitempty"`
	Status      string            `json:"status"`
	DeliveredAt *string           `json:"delivered_at"`
	TruckID     int               `json:"truck_id"`
	Truck       *SnapshotResponse `json:"truck,omitempty"`
}

// SnapshotResponse is the assigned truck's latest history entry.
type SnapshotResponse struct {
	At        string  `json:"at"`
	Location  string  `json:"location"`
	Odometer  float64 `json:"odometer"`
	Remaining []int   `json:"remaining"`
}
