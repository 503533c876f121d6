package cli

import (
	"fmt"
	"io"
	"parcel-dispatch-service/internal/app"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/services"
	"strings"
	"text/tabwriter"
)

func statusText(s domain.Status) string {
	switch s {
	case domain.Delivered:
		return styles.Delivered.Render(s.String())
	case domain.InTransit:
		return styles.InTransit.Render(s.String())
	default:
		return styles.AtDepot.Render(s.String())
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func deliveredText(day domain.Day, ps services.PackageStatus) string {
	if ps.DeliveredAt == nil {
		return "N/A"
	}
	return day.Format(*ps.DeliveredAt)
}

func truckText(id int) string {
	if id == 0 {
		return "N/A"
	}
	return fmt.Sprint(id)
}

// writeSummary prints the outcome of a simulation run.
func writeSummary(out io.Writer, sim *app.Simulation) error {
	res := sim.Result
	_, _ = fmt.Fprintln(out, styles.Title.Render("Simulation "+res.RunID))
	_, _ = fmt.Fprintf(out, "Delivered %d of %d packages, %.2f miles\n\n", res.Delivered, sim.Packages.Len(), res.TotalMiles)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TRUCK\tDRIVER\tDEPARTS\tRETURNS\tMILES\tPACKAGES")
	for _, t := range sim.Trucks {
		route := t.Route()
		ret := "N/A"
		if route.ReturnAt != nil {
			ret = sim.Day.Format(*route.ReturnAt)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\n",
			t.TruckID, truckText(t.DriverID), sim.Day.Format(route.DepartAt), ret, route.TotalMiles, joinIDs(deliveredIDs(route)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, err := range sim.Load.Failures {
		_, _ = fmt.Fprintln(out, styles.Error.Render("load: "+err.Error()))
	}
	for _, err := range res.Failures {
		_, _ = fmt.Fprintln(out, styles.Error.Render(err.Error()))
	}
	for _, v := range res.Violations {
		_, _ = fmt.Fprintln(out, styles.Warning.Render(fmt.Sprintf(
			"package %d delivered late by truck %d at %s (deadline %s)",
			v.PackageID, v.TruckID, sim.Day.Format(v.DeliveredAt), v.Deadline.Label(sim.Day))))
	}
	return nil
}

// writeReport prints the general report: every package, then mileage per truck.
func writeReport(out io.Writer, day domain.Day, r services.Report) error {
	at := day.Format(r.At)
	_, _ = fmt.Fprintln(out, styles.Title.Render("Status of all packages at "+at))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDESTINATION\tDEADLINE\tWEIGHT\tNOTE\tSTATUS\tDELIVERED\tTRUCK")
	for _, ps := range r.Packages {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%g\t%s\t%s\t%s\t%s\n",
			ps.PackageID, ps.Destination, ps.Deadline.Label(day), ps.Weight, orNA(ps.Note),
			statusText(ps.Status), deliveredText(day, ps), truckText(ps.TruckID))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out)
	for _, tm := range r.Trucks {
		_, _ = fmt.Fprintf(out, "Truck %d mileage at %s: %.2f miles\n", tm.TruckID, at, tm.Miles)
	}
	_, _ = fmt.Fprintln(out, styles.Label.Render(fmt.Sprintf("Total mileage at %s: %.2f miles", at, r.TotalMiles)))
	return nil
}

// writePackage prints one package and the latest snapshot of its truck.
func writePackage(out io.Writer, day domain.Day, at string, ps services.PackageStatus) error {
	_, _ = fmt.Fprintln(out, styles.Title.Render(fmt.Sprintf("Package %d at %s", ps.PackageID, at)))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Destination\t%s\n", ps.Destination)
	_, _ = fmt.Fprintf(w, "Deadline\t%s\n", ps.Deadline.Label(day))
	_, _ = fmt.Fprintf(w, "Weight\t%g\n", ps.Weight)
	_, _ = fmt.Fprintf(w, "Note\t%s\n", orNA(ps.Note))
	_, _ = fmt.Fprintf(w, "Status\t%s\n", statusText(ps.Status))
	_, _ = fmt.Fprintf(w, "Delivered\t%s\n", deliveredText(day, ps))
	_, _ = fmt.Fprintf(w, "Truck\t%s\n", truckText(ps.TruckID))
	if s := ps.Snapshot; s != nil {
		_, _ = fmt.Fprintf(w, "Truck location\t%s (as of %s)\n", s.Location, day.Format(s.At))
		_, _ = fmt.Fprintf(w, "Truck odometer\t%.2f miles\n", s.Odometer)
		_, _ = fmt.Fprintf(w, "Still aboard\t%s\n", joinIDs(s.Remaining))
	}
	return w.Flush()
}

func deliveredIDs(route domain.RoutePlan) []int {
	var ids []int
	for _, s := range route.Stops {
		ids = append(ids, s.PackageIDs...)
	}
	return ids
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return styles.Muted.Render("none")
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}
