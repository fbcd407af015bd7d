package pipeline

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/couchcryptid/sf-danger-zones/internal/dataset"
	"github.com/couchcryptid/sf-danger-zones/internal/domain"
)

// Summarize computes the KPI sums and the vulnerability-by-category totals
// of a view. Missing numeric cells are skipped. Category totals are ordered
// ascending by value; equal values keep category-name order.
func Summarize(view dataset.View) (domain.Summary, error) {
	t := view.Table()

	areas, err := t.Floats(domain.ColVulnerabilityAreas)
	if err != nil {
		return domain.Summary{}, err
	}
	police, err := t.Floats(domain.ColPoliceDistricts)
	if err != nil {
		return domain.Summary{}, err
	}
	supervisors, err := t.Floats(domain.ColSupervisorDistricts)
	if err != nil {
		return domain.Summary{}, err
	}
	categories, err := t.Strings(domain.ColCategory)
	if err != nil {
		return domain.Summary{}, err
	}

	totalAreas := decimal.Zero
	totalPolice := decimal.Zero
	totalSupervisors := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)

	for _, i := range view.Indices() {
		totalAreas = addFloat(totalAreas, areas[i])
		totalPolice = addFloat(totalPolice, police[i])
		totalSupervisors = addFloat(totalSupervisors, supervisors[i])

		// Blank categories are missing keys and form no group.
		if cat := categories[i]; cat != "" {
			byCategory[cat] = addFloat(byCategory[cat], areas[i])
		}
	}

	return domain.Summary{
		Rows: view.Len(),
		KPIs: domain.KPIs{
			VulnerabilityAreas:  totalAreas.IntPart(),
			PoliceDistricts:     totalPolice.IntPart(),
			SupervisorDistricts: totalSupervisors.IntPart(),
		},
		ByCategory: sortedTotals(byCategory),
	}, nil
}

func sortedTotals(groups map[string]decimal.Decimal) []domain.CategoryTotal {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)
	slices.SortStableFunc(names, func(a, b string) int {
		return groups[a].Cmp(groups[b])
	})

	totals := make([]domain.CategoryTotal, len(names))
	for i, name := range names {
		totals[i] = domain.CategoryTotal{
			Category: name,
			Value:    groups[name].InexactFloat64(),
		}
	}
	return totals
}

func addFloat(acc decimal.Decimal, v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return acc
	}
	return acc.Add(decimal.NewFromFloat(v))
}
