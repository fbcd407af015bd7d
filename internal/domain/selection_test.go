package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testOptions = Options{
	Days:       []string{"Monday", "Tuesday"},
	Years:      []string{"2018", "2019"},
	Categories: []string{"Assault", "Arson"},
}

func TestDefaultSelection(t *testing.T) {
	sel := DefaultSelection(testOptions)
	assert.Equal(t, testOptions.Days, sel.Days)
	assert.Equal(t, testOptions.Years, sel.Years)
	assert.Equal(t, testOptions.Categories, sel.Categories)

	// The selection owns its slices.
	sel.Days[0] = "Sunday"
	assert.Equal(t, "Monday", testOptions.Days[0])
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  Selection
	}{
		{
			name:  "no marker uses defaults",
			query: url.Values{ParamDay: {"Monday"}},
			want:  DefaultSelection(testOptions),
		},
		{
			name:  "marker with nothing checked",
			query: url.Values{ParamFiltered: {"1"}},
			want:  Selection{Days: []string{}, Years: []string{}, Categories: []string{}},
		},
		{
			name: "duplicates removed in order",
			query: url.Values{
				ParamFiltered: {"1"},
				ParamDay:      {"Tuesday", "Monday", "Tuesday"},
				ParamYear:     {"2019"},
				ParamCategory: {"Arson"},
			},
			want: Selection{
				Days:       []string{"Tuesday", "Monday"},
				Years:      []string{"2019"},
				Categories: []string{"Arson"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSelection(tt.query, testOptions))
		})
	}
}

func TestSelection_QueryRoundTrip(t *testing.T) {
	sel := Selection{Days: []string{"Monday"}, Years: []string{"2018", "2019"}}
	got := ParseSelection(sel.Query(), testOptions)

	assert.Equal(t, sel.Days, got.Days)
	assert.Equal(t, sel.Years, got.Years)
	assert.Empty(t, got.Categories)
}

func TestSelection_MatchesNothing(t *testing.T) {
	assert.False(t, DefaultSelection(testOptions).MatchesNothing())
	assert.True(t, Selection{Days: []string{"Monday"}, Years: []string{"2018"}}.MatchesNothing())
	assert.True(t, Selection{}.MatchesNothing())
}

func TestSelection_Has(t *testing.T) {
	sel := Selection{Days: []string{"Monday"}, Years: []string{"2018"}, Categories: []string{"Arson"}}
	assert.True(t, sel.Has(ParamDay, "Monday"))
	assert.False(t, sel.Has(ParamDay, "Tuesday"))
	assert.True(t, sel.Has(ParamYear, "2018"))
	assert.True(t, sel.Has(ParamCategory, "Arson"))
	assert.False(t, sel.Has("unknown", "Arson"))
}

func TestSelection_Key(t *testing.T) {
	a := Selection{Days: []string{"Monday", "Tuesday"}, Years: []string{"2018"}}
	b := Selection{Days: []string{"Tuesday", "Monday", "Monday"}, Years: []string{"2018"}}
	c := Selection{Days: []string{"Monday"}, Years: []string{"2018"}}
	// Values must not leak between fields.
	d := Selection{Years: []string{"Monday", "Tuesday"}, Categories: []string{"2018"}}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEqual(t, a.Key(), d.Key())
}

func TestNormalizeColumnName(t *testing.T) {
	assert.Equal(t, "Areas_of_Vulnerability,_2016", NormalizeColumnName("Areas of Vulnerability, 2016"))
	assert.Equal(t, "Latitude", NormalizeColumnName("Latitude"))
	assert.Equal(t, "__a", NormalizeColumnName("  a"))
}
