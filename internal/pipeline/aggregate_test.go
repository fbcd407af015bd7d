package pipeline_test

import (
	"testing"

	"github.com/couchcryptid/sf-danger-zones/internal/dataset"
	"github.com/couchcryptid/sf-danger-zones/internal/domain"
	"github.com/couchcryptid/sf-danger-zones/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_SingleRow(t *testing.T) {
	table := threeRowTable(t)
	view, err := pipeline.Apply(table.All(), domain.Selection{
		Days:       []string{"Monday"},
		Years:      []string{"2019"},
		Categories: []string{"Assault"},
	})
	require.NoError(t, err)

	summary, err := pipeline.Summarize(view)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Rows)
	assert.Equal(t, domain.KPIs{VulnerabilityAreas: 1, PoliceDistricts: 3, SupervisorDistricts: 3}, summary.KPIs)
	assert.Equal(t, []domain.CategoryTotal{{Category: "Assault", Value: 1}}, summary.ByCategory)
}

func TestSummarize_GroupsAscending(t *testing.T) {
	summary, err := pipeline.Summarize(fiveRowTable(t).All())
	require.NoError(t, err)

	want := []domain.CategoryTotal{
		{Category: "A", Value: 3},
		{Category: "B", Value: 10},
	}
	if diff := cmp.Diff(want, summary.ByCategory); diff != "" {
		t.Errorf("category totals mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(13), summary.KPIs.VulnerabilityAreas)
	assert.Equal(t, int64(5), summary.KPIs.PoliceDistricts)
}

func TestSummarize_TiesOrderedByName(t *testing.T) {
	table := newMockTable(t,
		mockRow{"Monday", "2018", "Robbery", "", "", "", "2", "1", "1"},
		mockRow{"Monday", "2018", "Arson", "", "", "", "2", "1", "1"},
		mockRow{"Monday", "2018", "Fraud", "", "", "", "1", "1", "1"},
	)
	summary, err := pipeline.Summarize(table.All())
	require.NoError(t, err)

	names := make([]string, len(summary.ByCategory))
	for i, c := range summary.ByCategory {
		names[i] = c.Category
	}
	assert.Equal(t, []string{"Fraud", "Arson", "Robbery"}, names)
}

func TestSummarize_TruncatesKPIs(t *testing.T) {
	table := newMockTable(t,
		mockRow{"Monday", "2018", "A", "", "", "", "1.7", "2.2", "0.4"},
		mockRow{"Monday", "2018", "A", "", "", "", "1.2", "0.3", "0.4"},
	)
	summary, err := pipeline.Summarize(table.All())
	require.NoError(t, err)

	assert.Equal(t, domain.KPIs{VulnerabilityAreas: 2, PoliceDistricts: 2, SupervisorDistricts: 0}, summary.KPIs)
	require.Len(t, summary.ByCategory, 1)
	assert.InDelta(t, 2.9, summary.ByCategory[0].Value, 1e-9)
}

func TestSummarize_SkipsMissingValues(t *testing.T) {
	table := newMockTable(t,
		mockRow{"Monday", "2018", "A", "", "", "", "", "2", "abc"},
		mockRow{"Monday", "2018", "A", "", "", "", "4", "", "1"},
		mockRow{"Monday", "2018", "", "", "", "", "8", "1", "1"},
	)
	summary, err := pipeline.Summarize(table.All())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, domain.KPIs{VulnerabilityAreas: 12, PoliceDistricts: 3, SupervisorDistricts: 2}, summary.KPIs)
	assert.Equal(t, []domain.CategoryTotal{{Category: "A", Value: 4}}, summary.ByCategory)
}

func TestSummarize_EmptyView(t *testing.T) {
	view, err := pipeline.Apply(threeRowTable(t).All(), domain.Selection{})
	require.NoError(t, err)

	summary, err := pipeline.Summarize(view)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Rows)
	assert.Equal(t, domain.KPIs{}, summary.KPIs)
	assert.Empty(t, summary.ByCategory)
}

func TestSummarize_MissingColumn(t *testing.T) {
	table, err := dataset.New([]string{"Incident Category"}, [][]string{{"Assault"}})
	require.NoError(t, err)

	_, err = pipeline.Summarize(table.All())
	require.ErrorIs(t, err, dataset.ErrMissingColumn)
}

func TestApplyAndSummarize_TheftAssaultTable(t *testing.T) {
	table := newMockTable(t,
		mockRow{"Monday", "2016", "Theft", "A&B", "37.77", "-122.41", "3", "1", "1"},
		mockRow{"Tuesday", "2016", "Assault", "C&D", "37.78", "-122.42", "5", "2", "1"},
		mockRow{"Monday", "2017", "Theft", "E&F", "37.76", "-122.40", "2", "1", "1"},
	)

	tests := []struct {
		name     string
		sel      domain.Selection
		indices  []int
		kpis     domain.KPIs
		category []domain.CategoryTotal
	}{
		{
			name:     "monday thefts across both years",
			sel:      domain.Selection{Days: []string{"Monday"}, Years: []string{"2016", "2017"}, Categories: []string{"Theft"}},
			indices:  []int{0, 2},
			kpis:     domain.KPIs{VulnerabilityAreas: 5, PoliceDistricts: 2, SupervisorDistricts: 2},
			category: []domain.CategoryTotal{{Category: "Theft", Value: 5}},
		},
		{
			name:     "everything",
			sel:      domain.Selection{Days: []string{"Monday", "Tuesday"}, Years: []string{"2016", "2017"}, Categories: []string{"Theft", "Assault"}},
			indices:  []int{0, 1, 2},
			kpis:     domain.KPIs{VulnerabilityAreas: 10, PoliceDistricts: 4, SupervisorDistricts: 3},
			category: []domain.CategoryTotal{{Category: "Theft", Value: 5}, {Category: "Assault", Value: 5}},
		},
		{
			name:    "no categories",
			sel:     domain.Selection{Days: []string{"Monday"}, Years: []string{"2016", "2017"}},
			indices: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := pipeline.Apply(table.All(), tt.sel)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.indices, view.Indices())

			summary, err := pipeline.Summarize(view)
			require.NoError(t, err)
			assert.Equal(t, len(tt.indices), summary.Rows)
			assert.Equal(t, tt.kpis, summary.KPIs)
			assert.ElementsMatch(t, tt.category, summary.ByCategory)
		})
	}
}
