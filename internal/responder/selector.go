package responder

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"botconsole/internal/models"
	"botconsole/internal/nlp"
	"botconsole/internal/store"
)

// ErrNoBotConfig is returned when the bot configuration row has never been
// seeded. Configuration absence is a hard precondition failure; everything
// else resolves to a fallback value.
var ErrNoBotConfig = errors.New("bot configuration is missing")

// Result is the outcome of selecting a response for one inbound text.
type Result struct {
	Response   string `json:"response"`
	Confidence int    `json:"confidence"`
	Intent     string `json:"intent"`
	TemplateID *int64 `json:"template_id,omitempty"`
}

// cannedResponses is the fixed intent table used when no template matches.
var cannedResponses = map[string]string{
	"greeting":        "Hi! How can I help you today?",
	"help":            "I'm here to help. Could you describe the issue in a bit more detail?",
	"gratitude":       "You're welcome! Anything else I can do for you?",
	"farewell":        "Goodbye! Feel free to reach out anytime.",
	"pricing":         "You can find our full price list at our website, or tell me which product you're interested in.",
	"delivery":        "Standard delivery takes 2-4 business days. If you have an order number I can say more.",
	"general_inquiry": "Thanks for your message! Could you tell me a bit more so I can point you in the right direction?",
}

// Selector decides what the bot sends back for a given inbound text. Its
// only side effect is the usage counter increment on a chosen template.
type Selector struct {
	classifier *nlp.Classifier
	templates  store.TemplateStore
	logger     *zap.Logger
}

func NewSelector(classifier *nlp.Classifier, templates store.TemplateStore, logger *zap.Logger) *Selector {
	return &Selector{classifier: classifier, templates: templates, logger: logger}
}

// Select runs the classifier over text and applies the selection policy:
// fallback below the confidence threshold, then template match by category
// or name, then the canned table, then the fallback message. The threshold
// comparison is strict: confidence equal to the threshold still selects a
// real response.
func (s *Selector) Select(text string, cfg *models.BotConfig) (*Result, error) {
	if cfg == nil {
		return nil, ErrNoBotConfig
	}

	cls := s.classifier.Classify(text)
	result := &Result{Confidence: cls.Confidence, Intent: cls.Intent}

	if cls.Confidence < cfg.ConfidenceThreshold {
		result.Response = cfg.FallbackMessage
		return result, nil
	}

	tmpl, err := s.matchTemplate(cls.Intent)
	if err != nil {
		return nil, err
	}
	if tmpl != nil {
		result.Response = renderTemplate(tmpl.Content, s.classifier.Entities(text))
		result.TemplateID = &tmpl.ID
		if err := s.templates.IncrementTemplateUsage(tmpl.ID); err != nil {
			return nil, fmt.Errorf("failed to increment template usage: %w", err)
		}
		s.logger.Debug("Template matched",
			zap.String("intent", cls.Intent),
			zap.Int64("template_id", tmpl.ID),
		)
		return result, nil
	}

	if canned, ok := cannedResponses[cls.Intent]; ok {
		result.Response = canned
		return result, nil
	}

	result.Response = cfg.FallbackMessage
	return result, nil
}

// matchTemplate returns the first active template whose category or name
// contains the intent label, case-insensitively, or nil when none matches.
func (s *Selector) matchTemplate(intent string) (*models.Template, error) {
	templates, err := s.templates.ListActiveTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	needle := strings.ToLower(intent)
	for _, t := range templates {
		if strings.Contains(strings.ToLower(t.Category), needle) ||
			strings.Contains(strings.ToLower(t.Name), needle) {
			return t, nil
		}
	}
	return nil, nil
}

// renderTemplate substitutes {variable} placeholders with the matching
// entity values. Placeholders without a value stay verbatim in the output.
func renderTemplate(content string, entities map[string]string) string {
	for name, value := range entities {
		content = strings.ReplaceAll(content, "{"+name+"}", value)
	}
	return content
}
