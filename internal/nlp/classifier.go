package nlp

import (
	"regexp"
	"strings"
)

// FallbackIntent is the terminal label assigned when no rule matches.
const FallbackIntent = "general_inquiry"

// BaselineConfidence is the fixed confidence of the rule-table classifier.
// It is part of the contract: selection behaviour downstream depends only on
// how it compares against the configured threshold.
const BaselineConfidence = 75

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Classification is the result of classifying one message text.
type Classification struct {
	Intent     string    `json:"intent"`
	Confidence int       `json:"confidence"` // 0..100
	Sentiment  Sentiment `json:"sentiment"`
	Keywords   []string  `json:"keywords"`
}

// Example is a supervisory (text, intent) pair used for training.
type Example struct {
	Text   string `json:"text"`
	Intent string `json:"intent"`
}

// rule maps a set of trigger substrings to an intent. A rule matches when
// every trigger appears in the lowercased input. Multi-word triggers match
// as phrases; single-word triggers match as token prefixes, so "thank"
// covers "thanks" without "hi" firing inside "shipping".
type rule struct {
	intent   string
	triggers []string
}

// intentRules is the canonical ordered rule table. Order is a tie-break
// policy, not an implementation detail: the first matching rule wins, so
// "hello, I need help" classifies as greeting, not help.
var intentRules = []rule{
	{"greeting", []string{"hello"}},
	{"greeting", []string{"hi"}},
	{"greeting", []string{"hey"}},
	{"greeting", []string{"good morning"}},
	{"greeting", []string{"good afternoon"}},
	{"greeting", []string{"good evening"}},
	{"help", []string{"help"}},
	{"help", []string{"support"}},
	{"help", []string{"assist"}},
	{"help", []string{"issue"}},
	{"help", []string{"problem"}},
	{"gratitude", []string{"thank"}},
	{"gratitude", []string{"appreciate"}},
	{"farewell", []string{"bye"}},
	{"farewell", []string{"goodbye"}},
	{"farewell", []string{"see you"}},
	{"pricing", []string{"how much"}},
	{"pricing", []string{"price"}},
	{"pricing", []string{"cost"}},
	{"pricing", []string{"pricing"}},
	{"delivery", []string{"delivery"}},
	{"delivery", []string{"shipping"}},
	{"delivery", []string{"ship"}},
	{"delivery", []string{"track", "order"}},
	{"delivery", []string{"arrive"}},
}

var positiveWords = map[string]bool{
	"good": true, "great": true, "excellent": true, "awesome": true,
	"love": true, "happy": true, "perfect": true, "amazing": true,
	"nice": true, "best": true, "wonderful": true, "thanks": true,
}

var negativeWords = map[string]bool{
	"bad": true, "terrible": true, "awful": true, "hate": true,
	"angry": true, "horrible": true, "worst": true, "wrong": true,
	"broken": true, "disappointed": true, "useless": true, "slow": true,
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "his": true,
	"has": true, "have": true, "this": true, "that": true, "with": true,
	"they": true, "from": true, "what": true, "how": true, "your": true,
	"will": true, "would": true, "there": true, "their": true, "about": true,
	"when": true, "please": true,
}

var (
	nameRe  = regexp.MustCompile(`(?i)\bmy name is (\pL+)`)
	orderRe = regexp.MustCompile(`\b\d{3,}\b`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// Classifier is the deterministic rule-based intent classifier. It holds no
// mutable state; Classify is a pure function of the input text and the rule
// table, so a Classifier is safe for concurrent use.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

// Classify assigns an intent, sentiment and keyword set to the text. It
// always returns a structurally valid result; unmatched input falls through
// to FallbackIntent.
func (c *Classifier) Classify(text string) Classification {
	normalized := strings.ToLower(strings.TrimSpace(text))
	tokens := tokenize(normalized)

	intent := FallbackIntent
	for _, r := range intentRules {
		if matchesAll(normalized, tokens, r.triggers) {
			intent = r.intent
			break
		}
	}

	return Classification{
		Intent:     intent,
		Confidence: BaselineConfidence,
		Sentiment:  c.sentiment(normalized),
		Keywords:   c.keywords(normalized),
	}
}

func matchesAll(text string, tokens []string, triggers []string) bool {
	for _, t := range triggers {
		if strings.Contains(t, " ") {
			if !strings.Contains(text, t) {
				return false
			}
			continue
		}
		found := false
		for _, tok := range tokens {
			if strings.HasPrefix(tok, t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func tokenize(normalized string) []string {
	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.Trim(f, ".,!?;:\"'"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// sentiment counts hits from the fixed word lists; equal nonzero counts
// resolve to neutral.
func (c *Classifier) sentiment(normalized string) Sentiment {
	pos, neg := 0, 0
	for _, tok := range tokenize(normalized) {
		if positiveWords[tok] {
			pos++
		}
		if negativeWords[tok] {
			neg++
		}
	}
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// keywords returns up to 5 tokens in original order after removing stop
// words and tokens of length <= 2. Duplicates are kept.
func (c *Classifier) keywords(normalized string) []string {
	out := make([]string, 0, 5)
	for _, tok := range tokenize(normalized) {
		if len(tok) <= 2 || stopWords[tok] {
			continue
		}
		out = append(out, tok)
		if len(out) == 5 {
			break
		}
	}
	return out
}

// Entities extracts the few entity kinds templates can reference. Absent
// entities simply do not appear in the map.
func (c *Classifier) Entities(text string) map[string]string {
	entities := make(map[string]string)
	if m := nameRe.FindStringSubmatch(text); m != nil {
		entities["name"] = m[1]
	}
	if m := orderRe.FindString(text); m != "" {
		entities["orderNumber"] = m
	}
	if m := emailRe.FindString(text); m != "" {
		entities["email"] = m
	}
	return entities
}

// Train evaluates the rule table against the supplied examples and returns
// the resubstitution accuracy as a percentage: the fraction of examples
// whose classified intent matches the labeled intent. The rule table itself
// is fixed, so training is repeatable and never alters future
// classification.
func (c *Classifier) Train(examples []Example) float64 {
	if len(examples) == 0 {
		return 0
	}
	matched := 0
	for _, ex := range examples {
		if c.Classify(ex.Text).Intent == ex.Intent {
			matched++
		}
	}
	return float64(matched) / float64(len(examples)) * 100
}
