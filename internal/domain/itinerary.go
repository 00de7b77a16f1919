package domain

import "time"

// Day is one calendar day of a trip's itinerary view.
type Day struct {
	Number int // 1-based; day 1 is the trip's start date
	Date   time.Time
	Items  []ItineraryItem
}

// GeneratedDays returns one Day per calendar date from StartDate to EndDate
// inclusive. Each day holds the items dated that day in stored order.
// The result is rebuilt on every call.
func (t Trip) GeneratedDays() []Day {
	n := daysBetween(t.StartDate, t.EndDate) + 1
	if n < 1 {
		return []Day{}
	}
	days := make([]Day, n)
	for i := range days {
		days[i] = Day{
			Number: i + 1,
			Date:   t.StartDate.AddDate(0, 0, i),
			Items:  []ItineraryItem{},
		}
	}
	for _, it := range t.Items {
		if it.Date == nil {
			continue
		}
		if i := daysBetween(t.StartDate, *it.Date); i >= 0 && i < n {
			days[i].Items = append(days[i].Items, it)
		}
	}
	return days
}

// PlacesToVisitItems returns the unscheduled items in stored order.
// Together with GeneratedDays it partitions Items.
func (t Trip) PlacesToVisitItems() []ItineraryItem {
	out := []ItineraryItem{}
	for _, it := range t.Items {
		if it.Date == nil {
			out = append(out, it)
		}
	}
	return out
}

// DayNumber returns the 1-based day of d within the trip, or 0 when d lies
// outside it.
func (t Trip) DayNumber(d time.Time) int {
	if !t.Contains(d) {
		return 0
	}
	return daysBetween(t.StartDate, d) + 1
}

// daysBetween counts calendar days from one date to another. It works on
// Unix seconds because time.Duration saturates past about 292 years.
func daysBetween(from, to time.Time) int {
	return int((CivilDate(to).Unix() - CivilDate(from).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// Itinerary is the read view of a trip: the trip itself, its generated days
// and its places to visit.
type Itinerary struct {
	Trip          Trip
	Days          []Day
	PlacesToVisit []ItineraryItem
}

// Itinerary builds the itinerary view of t.
func (t Trip) Itinerary() Itinerary {
	return Itinerary{Trip: t, Days: t.GeneratedDays(), PlacesToVisit: t.PlacesToVisitItems()}
}

// ExportRow is one line of the flat itinerary export. Scheduled items come
// first in day order; places to visit follow with Day = 0 and no date.
type ExportRow struct {
	Day       int
	Date      string // "2006-01-02", empty for places to visit
	PlaceName string
	Notes     string
	Latitude  *float64
	Longitude *float64
}

// ExportRows flattens the itinerary into export rows.
func (it Itinerary) ExportRows() []ExportRow {
	rows := make([]ExportRow, 0, len(it.Trip.Items))
	for _, d := range it.Days {
		for _, item := range d.Items {
			rows = append(rows, exportRow(d.Number, d.Date.Format(time.DateOnly), item))
		}
	}
	for _, item := range it.PlacesToVisit {
		rows = append(rows, exportRow(0, "", item))
	}
	return rows
}

func exportRow(day int, date string, item ItineraryItem) ExportRow {
	return ExportRow{
		Day:       day,
		Date:      date,
		PlaceName: item.PlaceName,
		Notes:     item.Notes,
		Latitude:  item.Latitude,
		Longitude: item.Longitude,
	}
}
