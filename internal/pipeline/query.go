package pipeline

import (
	"github.com/couchcryptid/sf-danger-zones/internal/dataset"
	"github.com/couchcryptid/sf-danger-zones/internal/domain"
)

// Apply returns the rows of view whose weekday, year and category are each
// in the selection. An empty field matches no rows. Applying the same
// selection twice gives the same rows as applying it once.
func Apply(view dataset.View, sel domain.Selection) (dataset.View, error) {
	t := view.Table()
	filters := []struct {
		column string
		values []string
	}{
		{domain.ColDayOfWeek, sel.Days},
		{domain.ColYear, sel.Years},
		{domain.ColCategory, sel.Categories},
	}

	// Masks are always computed so a missing column fails even for an
	// empty selection.
	for _, f := range filters {
		mask, err := t.In(f.column, f.values)
		if err != nil {
			return dataset.View{}, err
		}
		view = view.Where(mask)
	}
	return view, nil
}

// Options returns the distinct weekday, year and category values of the table.
func Options(t *dataset.Table) (domain.Options, error) {
	days, err := t.Distinct(domain.ColDayOfWeek)
	if err != nil {
		return domain.Options{}, err
	}
	years, err := t.Distinct(domain.ColYear)
	if err != nil {
		return domain.Options{}, err
	}
	categories, err := t.Distinct(domain.ColCategory)
	if err != nil {
		return domain.Options{}, err
	}
	return domain.Options{Days: days, Years: years, Categories: categories}, nil
}
