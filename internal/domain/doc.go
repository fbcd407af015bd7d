// Package domain models San Francisco crime-related incident records as they
// appear in the police incident workbook.
//
// # Data Source
//
// The workbook is an export of the DataSF "Police Department Incident
// Reports" dataset, one row per reported incident. Only the first sheet is
// read. Its header row carries human-readable labels such as
// "Incident Day of Week" or "Areas of Vulnerability, 2016".
//
// # Column Names
//
// Header labels are normalized at load time by replacing every space with an
// underscore, so "Areas of Vulnerability, 2016" becomes
// "Areas_of_Vulnerability,_2016". Cell values are never touched. The
// normalized names used by the dashboard are the Col* constants.
//
// # Filters
//
// Three fields are filterable: weekday, year and category. A [Selection]
// holds the chosen values for each. The options offered for a field are the
// distinct values present in the full table, and every option is selected
// by default. A field with nothing selected matches no rows.
//
// # Aggregates
//
// The KPIs are sums over the filtered rows of three numeric columns,
// truncated toward zero. The bar chart is the vulnerability-area sum grouped
// by category, ascending by value. The map always plots the full table.
package domain
