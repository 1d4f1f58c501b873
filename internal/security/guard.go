package security

// TruncationNotice is appended to responses cut down by the size guard.
const TruncationNotice = "\n\n[Response truncated due to size limits]"

// EstimateTokens approximates the token count of text at roughly four
// characters per token.
func EstimateTokens(text string) int {
	return len([]rune(text)) / 4
}

// EnforceResponseSize bounds generated text after the generation call. When
// the estimated token count exceeds maxTokens the text is truncated to
// maxTokens*4 characters and a truncation notice is appended. Returns the
// (possibly truncated) text and whether truncation happened.
func EnforceResponseSize(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text, false
	}

	runes := []rune(text)
	return string(runes[:maxTokens*4]) + TruncationNotice, true
}
