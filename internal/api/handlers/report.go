package handlers

import (
	"net/http"
	"parcel-dispatch-service/internal/api/dto"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/services"
	"strconv"
	"strings"
	"time"
)

// ReportHandler answers point-in-time queries against a finished simulation.
// Every endpoint takes an optional ?at= wall-clock time; it defaults to the
// end of the day and is clamped to the day start.
type ReportHandler struct {
	View *services.ReportView
	Day  domain.Day
}

func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	at, ok := h.queryTime(w, r)
	if !ok {
		return
	}

	report := h.View.StatusAt(at)

	res := dto.ReportResponse{
		At:         h.Day.Format(at),
		Packages:   make([]dto.PackageResponse, 0, len(report.Packages)),
		Trucks:     make([]dto.TruckMileageResponse, 0, len(report.Trucks)),
		TotalMiles: report.TotalMiles,
	}
	for _, ps := range report.Packages {
		res.Packages = append(res.Packages, h.packageResponse(ps))
	}
	for _, tm := range report.Trucks {
		res.Trucks = append(res.Trucks, dto.TruckMileageResponse{TruckID: tm.TruckID, Miles: tm.Miles})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *ReportHandler) Package(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "package id must be a positive integer")
		return
	}
	at, ok := h.queryTime(w, r)
	if !ok {
		return
	}

	ps, found := h.View.PackageAt(id, at)
	if !found {
		writeError(w, r, http.StatusNotFound, "package not found")
		return
	}

	writeJSON(w, r, http.StatusOK, h.packageResponse(ps))
}

func (h *ReportHandler) Trucks(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	at, ok := h.queryTime(w, r)
	if !ok {
		return
	}

	trucks := h.View.Trucks()
	res := dto.ListTrucksResponse{
		At:     h.Day.Format(at),
		Trucks: make([]dto.TruckResponse, 0, len(trucks)),
	}
	for _, t := range trucks {
		route := t.Route()
		tr := dto.TruckResponse{
			TruckID:  t.TruckID,
			DriverID: t.DriverID,
			DepartAt: h.Day.Format(route.DepartAt),
			Miles:    t.MileageAt(at),
			Stops:    []dto.RouteStopResponse{},
		}
		if route.ReturnAt != nil && *route.ReturnAt <= at {
			ret := h.Day.Format(*route.ReturnAt)
			tr.ReturnAt = &ret
		}
		for _, s := range route.Stops {
			if s.ArriveAt > at {
				break
			}
			tr.Stops = append(tr.Stops, dto.RouteStopResponse{
				Destination: s.Destination,
				ArriveAt:    h.Day.Format(s.ArriveAt),
				PackageIDs:  s.PackageIDs,
			})
		}
		res.Trucks = append(res.Trucks, tr)
		res.TotalMiles += tr.Miles
	}

	writeJSON(w, r, http.StatusOK, res)
}

// queryTime writes a 400 and returns false when ?at= is malformed.
func (h *ReportHandler) queryTime(w http.ResponseWriter, r *http.Request) (time.Duration, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("at"))
	if raw == "" {
		return h.Day.Length(), true
	}

	at, err := h.Day.QueryOffset(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, `at must be a time of day such as "10:30 AM"`)
		return 0, false
	}
	return at, true
}

func (h *ReportHandler) packageResponse(ps services.PackageStatus) dto.PackageResponse {
	res := dto.PackageResponse{
		PackageID:   ps.PackageID,
		Destination: ps.Destination,
		Deadline:    ps.Deadline.Label(h.Day),
		Weight:      ps.Weight,
		Note:        ps.Note,
		Status:      ps.Status.String(),
		TruckID:     ps.TruckID,
	}
	if ps.DeliveredAt != nil {
		at := h.Day.Format(*ps.DeliveredAt)
		res.DeliveredAt = &at
	}
	if s := ps.Snapshot; s != nil {
		res.Truck = &dto.SnapshotResponse{
			At:        h.Day.Format(s.At),
			Location:  s.Location,
			Odometer:  s.Odometer,
			Remaining: append([]int{}, s.Remaining...),
		}
	}
	return res
}
