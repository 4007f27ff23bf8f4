package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/granabot/granabot/internal/common"
	"github.com/granabot/granabot/internal/model"
)

// ParseClassification extracts a classification from raw model output.
// Models ignore formatting instructions often enough that markdown fences
// and stray prose around the JSON object are tolerated.
func ParseClassification(content string) (model.Classification, error) {
	cleaned := extractJSONObject(content)
	if cleaned == "" {
		return model.Classification{}, fmt.Errorf("%w: no JSON object in %q", common.ErrOracleResponse, truncate(content, 120))
	}

	var raw struct {
		Action   string `json:"action"`
		Category string `json:"category"`
		Filters  struct {
			Category string `json:"category"`
			Payer    string `json:"payer"`
			Period   string `json:"period"`
		} `json:"filters"`
		Amount float64 `json:"amount"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return model.Classification{}, fmt.Errorf("%w: %v", common.ErrOracleResponse, err)
	}

	action, err := normalizeAction(raw.Action)
	if err != nil {
		return model.Classification{}, err
	}

	return model.Classification{
		Action:   action,
		Amount:   raw.Amount,
		Category: strings.TrimSpace(raw.Category),
		Filters: model.OracleFilters{
			Category: strings.TrimSpace(raw.Filters.Category),
			Payer:    strings.TrimSpace(raw.Filters.Payer),
			Period:   strings.TrimSpace(raw.Filters.Period),
		},
	}, nil
}

// normalizeAction tolerates the Portuguese action names some models
// answer with despite the English schema.
func normalizeAction(action string) (model.OracleAction, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "record", "registro", "registrar", "gasto":
		return model.ActionRecord, nil
	case "query", "consulta", "consultar", "pergunta":
		return model.ActionQuery, nil
	case "other", "outro", "outra", "nenhum":
		return model.ActionOther, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", common.ErrOracleResponse, action)
}

// extractJSONObject strips markdown fences and returns the outermost
// {...} span, or "" when there is none.
func extractJSONObject(content string) string {
	s := strings.TrimSpace(content)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
