package security

import (
	"strings"
	"testing"
)

func TestEnforceResponseSizeWithinLimit(t *testing.T) {
	text := strings.Repeat("word ", 100)
	got, truncated := EnforceResponseSize(text, 2000)
	if truncated {
		t.Error("short response should not be truncated")
	}
	if got != text {
		t.Error("short response should pass through unchanged")
	}
}

func TestEnforceResponseSizeTruncates(t *testing.T) {
	text := strings.Repeat("x", 9000)
	got, truncated := EnforceResponseSize(text, 2000)
	if !truncated {
		t.Fatal("oversized response should be truncated")
	}
	if !strings.HasSuffix(got, TruncationNotice) {
		t.Error("truncated response should end with the notice")
	}
	body := strings.TrimSuffix(got, TruncationNotice)
	if len(body) != 8000 {
		t.Errorf("truncated body length = %d, want 8000", len(body))
	}
}

func TestEnforceResponseSizeExactBoundary(t *testing.T) {
	// Exactly maxTokens*4 characters estimates to exactly maxTokens
	text := strings.Repeat("x", 8000)
	_, truncated := EnforceResponseSize(text, 2000)
	if truncated {
		t.Error("response at exactly the limit should not be truncated")
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(strings.Repeat("a", 400)); got != 100 {
		t.Errorf("EstimateTokens = %d, want 100", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(empty) = %d, want 0", got)
	}
}
