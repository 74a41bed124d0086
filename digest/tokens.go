package digest

// bytesPerToken is the usual ratio for English text under BPE tokenizers.
// Digest text is mostly cleaned lowercase ASCII, so bytes equal runes.
const bytesPerToken = 4

// EstimateTokens approximates how many LLM tokens text costs, rounded up.
func EstimateTokens(text string) int {
	return (len(text) + bytesPerToken - 1) / bytesPerToken
}
