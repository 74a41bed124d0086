package cleaner

// stopwords is the fixed English stopword set removed by CleanTexts.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "am": {}, "an": {},
	"and": {}, "another": {}, "any": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "because": {}, "been": {}, "before": {}, "being": {}, "between": {},
	"both": {}, "but": {}, "by": {},
	"came": {}, "can": {}, "come": {}, "could": {},
	"did": {}, "do": {},
	"each": {},
	"for": {}, "from": {},
	"get": {}, "got": {},
	"had": {}, "has": {}, "have": {}, "he": {}, "her": {}, "here": {}, "him": {},
	"himself": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"like": {},
	"make": {}, "many": {}, "me": {}, "might": {}, "more": {}, "most": {},
	"much": {}, "must": {}, "my": {},
	"never": {}, "no": {}, "not": {}, "now": {},
	"of": {}, "on": {}, "only": {}, "or": {}, "other": {}, "our": {}, "out": {}, "over": {},
	"said": {}, "same": {}, "see": {}, "she": {}, "should": {}, "since": {}, "so": {},
	"some": {}, "still": {}, "such": {},
	"take": {}, "than": {}, "that": {}, "the": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"to": {}, "too": {},
	"under": {}, "up": {}, "us": {},
	"very": {},
	"was": {}, "way": {}, "we": {}, "well": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "who": {}, "why": {}, "will": {}, "with": {},
	"would": {},
	"you": {}, "your": {},
}

// IsStopword reports whether the lowercase token is in the stopword set.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
