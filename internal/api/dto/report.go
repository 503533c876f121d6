package dto

type TruckMileageResponse struct {
	TruckID int     `json:"truck_id"`
	Miles   float64 `json:"miles"`
}

type ReportResponse struct {
	At         string                 `json:"at"`
	Packages   []PackageResponse      `json:"packages"`
	Trucks     []TruckMileageResponse `json:"trucks"`
	TotalMiles float64                `json:"total_miles"`
}

type RouteStopResponse struct {
	Destination string `json:"destination"`
	ArriveAt    string `json:"arrive_at"`
	PackageIDs  []int  `json:"package_ids"`
}

// TruckResponse is one truck's route as driven up to the query time.
type TruckResponse struct {
	TruckID  int                 `json:"truck_id"`
	DriverID int                 `json:"driver_id"`
	DepartAt string              `json:"depart_at"`
	ReturnAt *string             `json:"return_at"`
	Miles    float64             `json:"miles"`
	Stops    []RouteStopResponse `json:"stops"`
}

type ListTrucksResponse struct {
	At         string          `json:"at"`
	Trucks     []TruckResponse `json:"trucks"`
	TotalMiles float64         `json:"total_miles"`
}
