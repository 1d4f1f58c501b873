package rag

import "testing"

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		query string
		want  QueryType
	}{
		{"What will the sentiment be next year?", QueryTypeForecast},
		{"Forecast sentiment for Japan", QueryTypeForecast},
		{"Is sentiment trending upward in Brazil?", QueryTypeTrend},
		{"Describe the overall direction of German sentiment", QueryTypeTrend},
		{"How does sentiment correlate with GDP?", QueryTypeCorrelation},
		{"What is the relationship between these countries?", QueryTypeCorrelation},
		{"Were there any unusual readings in March?", QueryTypeAnomaly},
		{"Explain the sentiment spike in 2008", QueryTypeAnomaly},
		{"What was the sentiment in France in 1995?", QueryTypeHistorical},
		{"", QueryTypeHistorical},
	}

	for _, tt := range tests {
		if got := ClassifyQuery(tt.query); got != tt.want {
			t.Errorf("ClassifyQuery(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}

func TestClassifyQueryPriorityOrder(t *testing.T) {
	// Matches forecast, trend, and anomaly; forecast has priority
	query := "Predict whether the unusual upward trend continues"
	if got := ClassifyQuery(query); got != QueryTypeForecast {
		t.Errorf("ClassifyQuery(%q) = %s, want forecast", query, got)
	}

	// Matches trend and correlation; trend has priority
	query = "Is the trend related to oil prices?"
	if got := ClassifyQuery(query); got != QueryTypeTrend {
		t.Errorf("ClassifyQuery(%q) = %s, want trend", query, got)
	}
}

func TestClassifyQueryCaseInsensitive(t *testing.T) {
	if got := ClassifyQuery("FORECAST for Italy"); got != QueryTypeForecast {
		t.Errorf("ClassifyQuery uppercase = %s, want forecast", got)
	}
}
