package domain

import "strings"

// Normalized column names read by the dashboard.
const (
	ColDayOfWeek           = "Incident_Day_of_Week"
	ColYear                = "Incident_Year"
	ColCategory            = "Incident_Category"
	ColVulnerabilityAreas  = "Areas_of_Vulnerability,_2016"
	ColPoliceDistricts     = "Current_Police_Districts"
	ColSupervisorDistricts = "Current_Supervisor_Districts"
	ColLatitude            = "Latitude"
	ColLongitude           = "Longitude"
	ColIntersection        = "Intersection"
)

// RequiredColumns lists every column the dashboard reads.
var RequiredColumns = []string{
	ColDayOfWeek,
	ColYear,
	ColCategory,
	ColVulnerabilityAreas,
	ColPoliceDistricts,
	ColSupervisorDistricts,
	ColLatitude,
	ColLongitude,
	ColIntersection,
}

// NumericColumns lists the columns parsed as floating point numbers.
var NumericColumns = []string{
	ColVulnerabilityAreas,
	ColPoliceDistricts,
	ColSupervisorDistricts,
	ColLatitude,
	ColLongitude,
}

// NormalizeColumnName replaces every space in a header label with an underscore.
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Incident is the typed form of one workbook row, used for export.
// Missing numeric cells are nil.
type Incident struct {
	Row                 int      `json:"row"`
	DayOfWeek           string   `json:"day_of_week"`
	Year                string   `json:"year"`
	Category            string   `json:"category"`
	VulnerabilityAreas  *float64 `json:"areas_of_vulnerability_2016,omitempty"`
	PoliceDistricts     *float64 `json:"current_police_districts,omitempty"`
	SupervisorDistricts *float64 `json:"current_supervisor_districts,omitempty"`
	Geo                 *Geo     `json:"geo,omitempty"`
	Intersection        string   `json:"intersection,omitempty"`
}
