// Package career holds the table repos for the catalog: maps, levels, skills and KPI definitions.
package career
