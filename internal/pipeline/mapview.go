package pipeline

import (
	"math"

	"github.com/couchcryptid/sf-danger-zones/internal/dataset"
	"github.com/couchcryptid/sf-danger-zones/internal/domain"
)

// BuildMap plots every row of the table that has both coordinates. The
// centre is the mean of the present latitudes and longitudes; an empty
// table centres on the zero point.
func BuildMap(t *dataset.Table, zoom float64) (domain.MapView, error) {
	lats, err := t.Floats(domain.ColLatitude)
	if err != nil {
		return domain.MapView{}, err
	}
	lons, err := t.Floats(domain.ColLongitude)
	if err != nil {
		return domain.MapView{}, err
	}
	labels, err := t.Strings(domain.ColIntersection)
	if err != nil {
		return domain.MapView{}, err
	}

	view := domain.MapView{
		Center: domain.Geo{Lat: mean(lats), Lon: mean(lons)},
		Zoom:   zoom,
		Points: make([]domain.MapPoint, 0, len(lats)),
	}
	for i := range lats {
		if !finite(lats[i]) || !finite(lons[i]) {
			continue
		}
		view.Points = append(view.Points, domain.MapPoint{
			Geo:   domain.Geo{Lat: lats[i], Lon: lons[i]},
			Label: labels[i],
		})
	}
	return view, nil
}

// BuildPreview returns the raw table, capped at limit rows when limit > 0.
func BuildPreview(t *dataset.Table, limit int) domain.TablePreview {
	rows := t.Rows()
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return domain.TablePreview{
		Columns: t.Columns(),
		Rows:    rows,
		Total:   t.Len(),
	}
}

func mean(vals []float64) float64 {
	var sum float64
	var n int
	for _, v := range vals {
		if !finite(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
