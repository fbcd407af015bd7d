package pipeline

import (
	"math"

	"github.com/couchcryptid/sf-danger-zones/internal/dataset"
	"github.com/couchcryptid/sf-danger-zones/internal/domain"
)

// headerRows is the number of worksheet rows above the first data row.
const headerRows = 1

// Incidents converts the rows of a view to typed incident records.
func Incidents(view dataset.View) ([]domain.Incident, error) {
	t := view.Table()

	text := make(map[string][]string, 4)
	for _, col := range []string{domain.ColDayOfWeek, domain.ColYear, domain.ColCategory, domain.ColIntersection} {
		vals, err := t.Strings(col)
		if err != nil {
			return nil, err
		}
		text[col] = vals
	}
	nums := make(map[string][]float64, 5)
	for _, col := range domain.NumericColumns {
		vals, err := t.Floats(col)
		if err != nil {
			return nil, err
		}
		nums[col] = vals
	}

	out := make([]domain.Incident, 0, view.Len())
	for _, i := range view.Indices() {
		inc := domain.Incident{
			Row:                 i + headerRows + 1,
			DayOfWeek:           text[domain.ColDayOfWeek][i],
			Year:                text[domain.ColYear][i],
			Category:            text[domain.ColCategory][i],
			Intersection:        text[domain.ColIntersection][i],
			VulnerabilityAreas:  optional(nums[domain.ColVulnerabilityAreas][i]),
			PoliceDistricts:     optional(nums[domain.ColPoliceDistricts][i]),
			SupervisorDistricts: optional(nums[domain.ColSupervisorDistricts][i]),
		}
		lat, lon := nums[domain.ColLatitude][i], nums[domain.ColLongitude][i]
		if finite(lat) && finite(lon) {
			inc.Geo = &domain.Geo{Lat: lat, Lon: lon}
		}
		out = append(out, inc)
	}
	return out, nil
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
