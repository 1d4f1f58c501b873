package rag

import "strings"

// QueryType labels the analytic intent of a query.
type QueryType string

const (
	QueryTypeForecast    QueryType = "forecast"
	QueryTypeTrend       QueryType = "trend"
	QueryTypeCorrelation QueryType = "correlation"
	QueryTypeAnomaly     QueryType = "anomaly"
	QueryTypeHistorical  QueryType = "historical"
)

// intentKeywords is checked in priority order: a query can match several
// categories, so forecast beats trend beats correlation beats anomaly.
var intentKeywords = []struct {
	queryType QueryType
	keywords  []string
}{
	{QueryTypeForecast, []string{"predict", "forecast", "future", "will be", "next"}},
	{QueryTypeTrend, []string{"trend", "trending", "pattern", "direction"}},
	{QueryTypeCorrelation, []string{"correlate", "correlation", "relationship", "related"}},
	{QueryTypeAnomaly, []string{"anomaly", "unusual", "outlier", "spike", "drop"}},
}

// ClassifyQuery tags a query's analytic intent by keyword priority, first
// match wins, defaulting to historical.
func ClassifyQuery(query string) QueryType {
	lower := strings.ToLower(query)

	for _, entry := range intentKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.queryType
			}
		}
	}

	return QueryTypeHistorical
}
