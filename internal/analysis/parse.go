package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/script"
)

// DefaultConfidence is assigned to model corrections without a confidence.
const DefaultConfidence = 0.8

type wireCorrection struct {
	Word         string   `json:"word"`
	Suggestion   string   `json:"suggestion"`
	Confidence   *float64 `json:"confidence"`
	Reason       string   `json:"reason"`
	Type         string   `json:"type"`
	Alternatives []string `json:"alternatives"`
}

type wireResponse struct {
	SpellingCorrections   *[]wireCorrection `json:"spelling_corrections"`
	MissingElements       []string          `json:"missing_elements"`
	FormattingSuggestions []string          `json:"formatting_suggestions"`
	GeneralFeedback       string            `json:"general_feedback"`
}

// ParseResponse decodes raw model output, tolerating a surrounding markdown
// code fence.
func ParseResponse(content string) (*model.AnalysisResponse, error) {
	content = stripMarkdownFence(content)
	var wire wireResponse
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if wire.SpellingCorrections == nil {
		return nil, fmt.Errorf("%w: missing spelling_corrections", ErrMalformedResponse)
	}

	resp := &model.AnalysisResponse{
		MissingElements:       nonEmpty(wire.MissingElements),
		FormattingSuggestions: nonEmpty(wire.FormattingSuggestions),
		GeneralFeedback:       strings.TrimSpace(wire.GeneralFeedback),
	}
	for _, wc := range *wire.SpellingCorrections {
		word := script.Normalize(strings.TrimSpace(wc.Word))
		if word == "" {
			continue
		}
		confidence := DefaultConfidence
		if wc.Confidence != nil {
			confidence = clamp01(*wc.Confidence)
		}
		resp.SpellingCorrections = append(resp.SpellingCorrections, model.Correction{
			Word:         word,
			Suggestion:   script.Normalize(strings.TrimSpace(wc.Suggestion)),
			Alternatives: nonEmpty(wc.Alternatives),
			Confidence:   confidence,
			Reason:       strings.TrimSpace(wc.Reason),
			Kind:         kindOf(wc.Type),
			Source:       model.SourceAI,
		})
	}
	return resp, nil
}

func kindOf(t string) model.Kind {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "grammar":
		return model.KindGrammar
	case "formatting":
		return model.KindFormatting
	default:
		return model.KindSpelling
	}
}

// stripMarkdownFence removes optional ```json ... ``` wrapping from model output.
func stripMarkdownFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, script.Normalize(v))
		}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
