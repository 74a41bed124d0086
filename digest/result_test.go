package digest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/webdigest/digest"
	"github.com/use-agent/webdigest/models"
)

const validReply = `{
  "name": "Example Domain",
  "summary": "A placeholder page.",
  "labels": ["reference"],
  "images": [],
  "keyPoints": [{"title": "Purpose", "value": "Documentation examples"}],
  "usefulLinks": [{"title": "IANA", "url": "https://www.iana.org"}],
  "relatedContent": []
}`

func TestParseResult_Valid(t *testing.T) {
	t.Parallel()

	got, err := digest.ParseResult(validReply)
	require.NoError(t, err)

	assert.Equal(t, &models.SummaryResult{
		Name:           "Example Domain",
		Summary:        "A placeholder page.",
		Labels:         []string{"reference"},
		Images:         []models.ImageRef{},
		KeyPoints:      []models.KeyPoint{{Title: "Purpose", Value: "Documentation examples"}},
		UsefulLinks:    []models.LinkRef{{Title: "IANA", URL: "https://www.iana.org"}},
		RelatedContent: []models.LinkRef{},
	}, got)
}

func TestParseResult_EmptyValuesAccepted(t *testing.T) {
	t.Parallel()

	got, err := digest.ParseResult(`{"name":"","summary":"","labels":[],"images":[],"keyPoints":[],"usefulLinks":[],"relatedContent":[]}`)
	require.NoError(t, err)
	assert.Empty(t, got.Name)
	assert.Empty(t, got.Labels)
}

func TestParseResult_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "Sorry, I can't help with that."},
		{"truncated", `{"name": "Example"`},
		{"code fence", "```json\n" + validReply + "\n```"},
		{"array", `[]`},
		{"null", `null`},
		{"missing key", `{"name":"","summary":"","labels":[],"images":[],"keyPoints":[],"usefulLinks":[]}`},
		{"null key", `{"name":null,"summary":"","labels":[],"images":[],"keyPoints":[],"usefulLinks":[],"relatedContent":[]}`},
		{"wrong type", `{"name":"","summary":"","labels":"news","images":[],"keyPoints":[],"usefulLinks":[],"relatedContent":[]}`},
		{"null label", `{"name":"","summary":"","labels":["news",null],"images":[],"keyPoints":[],"usefulLinks":[],"relatedContent":[]}`},
		{"image missing alt", `{"name":"","summary":"","labels":[],"images":[{"src":"https://example.com/a.png"}],"keyPoints":[],"usefulLinks":[],"relatedContent":[]}`},
		{"key point empty object", `{"name":"","summary":"","labels":[],"images":[],"keyPoints":[{}],"usefulLinks":[],"relatedContent":[]}`},
		{"key point null value", `{"name":"","summary":"","labels":[],"images":[],"keyPoints":[{"title":"Purpose","value":null}],"usefulLinks":[],"relatedContent":[]}`},
		{"null useful link", `{"name":"","summary":"","labels":[],"images":[],"keyPoints":[],"usefulLinks":[null],"relatedContent":[]}`},
		{"related content string", `{"name":"","summary":"","labels":[],"images":[],"keyPoints":[],"usefulLinks":[],"relatedContent":["https://example.org"]}`},
		{"related content missing url", `{"name":"","summary":"","labels":[],"images":[],"keyPoints":[],"usefulLinks":[],"relatedContent":[{"title":"Example"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := digest.ParseResult(tt.raw)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, models.ErrCodeSummarization, models.ErrorCode(err))
		})
	}
}
