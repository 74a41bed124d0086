package digest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/use-agent/webdigest/models"
)

// SystemInstruction fixes the role of the summarizer and the exact JSON
// shape ParseResult accepts.
const SystemInstruction = `You are a web scraper expert.
Provide a brief and concise summary of the website content, the categories/labels it falls in (sports, blog, e-commerce, paper, news, etc), the best images if any, the key points of the content as a list of titles and values with a brief description of each, useful links if any, and lastly related content (similar real websites) if any.
Focus only on key points and avoid unnecessary details.
Always return your response as a single JSON object in exactly this format, without any additional text, commentary or markdown:
{
  "name": "string",
  "summary": "string",
  "labels": ["string"],
  "images": [{"src": "string", "alt": "string"}],
  "keyPoints": [{"title": "string", "value": "string"}],
  "usefulLinks": [{"title": "string", "url": "string"}],
  "relatedContent": [{"title": "string", "url": "string"}]
}
Every key is required. If you cannot determine a value, return an empty string or an empty array for that key. Never return null and never omit a key.`

// requiredFields lists every key the summarizer must return.
var requiredFields = []string{
	"name",
	"summary",
	"labels",
	"images",
	"keyPoints",
	"usefulLinks",
	"relatedContent",
}

// elementFields lists the keys every element of an object array must
// carry.
var elementFields = map[string][]string{
	"images":         {"src", "alt"},
	"keyPoints":      {"title", "value"},
	"usefulLinks":    {"title", "url"},
	"relatedContent": {"title", "url"},
}

// ParseResult decodes the summarizer's raw reply. A reply that is not a
// JSON object, lacks a required key, carries null for one, or has a value
// of the wrong type fails with SUMMARIZATION_FAILURE. The same holds for
// the elements of every array. Nothing is repaired or defaulted.
func ParseResult(raw string) (*models.SummaryResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fail("summarizer reply is not a JSON object", err)
	}
	if fields == nil {
		return nil, fail("summarizer reply is null", nil)
	}
	if err := requireKeys(fields, requiredFields, "summarizer reply"); err != nil {
		return nil, err
	}

	labels, err := elements(fields, "labels")
	if err != nil {
		return nil, err
	}
	for i, v := range labels {
		if isNull(v) {
			return nil, fail(fmt.Sprintf("summarizer reply has null labels[%d]", i), nil)
		}
	}

	for _, key := range requiredFields {
		keys, ok := elementFields[key]
		if !ok {
			continue
		}
		items, err := elements(fields, key)
		if err != nil {
			return nil, err
		}
		for i, item := range items {
			where := fmt.Sprintf("summarizer reply %s[%d]", key, i)
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
				return nil, fail(where+" is not an object", err)
			}
			if err := requireKeys(obj, keys, where); err != nil {
				return nil, err
			}
		}
	}

	var result models.SummaryResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fail("summarizer reply does not match the summary schema", err)
	}
	return &result, nil
}

func requireKeys(obj map[string]json.RawMessage, keys []string, where string) error {
	for _, key := range keys {
		v, ok := obj[key]
		if !ok {
			return fail(fmt.Sprintf("%s lacks %q", where, key), nil)
		}
		if isNull(v) {
			return fail(fmt.Sprintf("%s has null %q", where, key), nil)
		}
	}
	return nil
}

// elements splits the array under key into its raw items.
func elements(fields map[string]json.RawMessage, key string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(fields[key], &items); err != nil {
		return nil, fail(fmt.Sprintf("summarizer reply %q is not an array", key), err)
	}
	return items, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func fail(msg string, err error) error {
	return models.NewDigestError(models.ErrCodeSummarization, msg, err)
}
