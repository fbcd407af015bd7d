package domain

// KPIs are the three headline sums, truncated toward zero.
type KPIs struct {
	VulnerabilityAreas  int64 `json:"areas_of_vulnerability"`
	PoliceDistricts     int64 `json:"current_police_districts"`
	SupervisorDistricts int64 `json:"current_supervisor_districts"`
}

// CategoryTotal is one bar of the vulnerability-by-category chart.
type CategoryTotal struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// Summary is the aggregate of one filtered view.
type Summary struct {
	Rows       int             `json:"rows"`
	KPIs       KPIs            `json:"kpis"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// MapPoint is one marker on the scatter map.
type MapPoint struct {
	Geo
	Label string `json:"label"`
}

// MapView describes the scatter map: every located row of the full table.
type MapView struct {
	Center Geo        `json:"center"`
	Zoom   float64    `json:"zoom"`
	Points []MapPoint `json:"points"`
}

// TablePreview is the raw table shown above the filters.
type TablePreview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

// DashboardView is everything one page render needs.
type DashboardView struct {
	Preview   TablePreview `json:"preview"`
	Options   Options      `json:"options"`
	Selection Selection    `json:"selection"`
	Summary   Summary      `json:"summary"`
	Map       MapView      `json:"map"`
}
