package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tiagobluiz/travel-companion/internal/domain"
	"github.com/tiagobluiz/travel-companion/internal/middleware"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{"day", "date", "place_name", "notes", "latitude", "longitude"}

// GetItinerary handles GET /trips/{tripID}/itinerary.
// It returns the generated days and the unscheduled places to visit.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	it, err := s.itinerary.Get(r.Context(), middleware.ActorFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itineraryToResponse(it))
}

// ExportItinerary handles GET /trips/{tripID}/itinerary/export.
// It returns one row per item, scheduled items first.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		badRequest(w, fmt.Sprintf("unsupported format %q", format))
		return
	}

	rows, err := s.itinerary.Export(r.Context(), middleware.ActorFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == "csv" {
		buf := buildCSV(rows)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="itinerary-%s.csv"`, id))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w) //nolint:errcheck
		return
	}
	writeJSON(w, http.StatusOK, buildJSONExport(rows))
}

// AddItem handles POST /trips/{tripID}/items.
func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body ItemRequest
	if !s.readBody(w, r, &body) {
		return
	}

	added, err := s.itinerary.AddItem(r.Context(), middleware.ActorFrom(r.Context()), id, requestToItem(domain.ItemID{}, body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemToResponse(added))
}

// UpdateItem handles PUT /trips/{tripID}/items/{itemID}.
// The body replaces the item; omitting date moves it to places to visit.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	itemID, err := pathUUID(r, "itemID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var body ItemRequest
	if !s.readBody(w, r, &body) {
		return
	}

	updated, err := s.itinerary.UpdateItem(r.Context(), middleware.ActorFrom(r.Context()), id, requestToItem(domain.ItemID(itemID), body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(updated))
}

// RemoveItem handles DELETE /trips/{tripID}/items/{itemID}.
func (s *Server) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	itemID, err := pathUUID(r, "itemID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.itinerary.RemoveItem(r.Context(), middleware.ActorFrom(r.Context()), id, domain.ItemID(itemID)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildJSONExport converts domain rows to the JSON response.
// Places to visit carry no day and no date.
func buildJSONExport(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		row := ExportRow{PlaceName: r.PlaceName, Latitude: r.Latitude, Longitude: r.Longitude}
		if r.Day > 0 {
			day := r.Day
			row.Day = &day
			row.Date = mustParseDate(r.Date)
		}
		if r.Notes != "" {
			row.Notes = &r.Notes
		}
		out = append(out, row)
	}
	return out
}

// buildCSV encodes domain rows as CSV with a header line.
func buildCSV(rows []domain.ExportRow) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write(exportRowToCSVRecord(r))
	}
	w.Flush()
	return &buf
}

// exportRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// The day column is blank for places to visit; nil coordinates are blank.
func exportRowToCSVRecord(r domain.ExportRow) []string {
	day := ""
	if r.Day > 0 {
		day = strconv.Itoa(r.Day)
	}
	return []string{
		day,
		r.Date,
		r.PlaceName,
		r.Notes,
		formatOptionalFloat(r.Latitude),
		formatOptionalFloat(r.Longitude),
	}
}

// mustParseDate parses an "2006-01-02" string into an openapi_types.Date.
// Panics on malformed input; callers are expected to pass service-generated dates.
func mustParseDate(s string) *openapi_types.Date {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic("handler: malformed date from service: " + s)
	}
	return &openapi_types.Date{Time: t}
}

// formatOptionalFloat returns f in shortest form, or "" if f is nil.
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
