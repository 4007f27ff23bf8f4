package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/granabot/granabot/internal/common"
	"github.com/granabot/granabot/internal/model"
	"github.com/granabot/granabot/internal/service"
)

// Oracle implements service.Oracle on top of a completion Client.
type Oracle struct {
	client    Client
	logger    *slog.Logger
	retryOpts service.RetryOptions
}

// NewOracle creates the classifier oracle for the configured provider.
func NewOracle(ctx context.Context, cfg Config, logger *slog.Logger) (*Oracle, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	case "gemini":
		client, err = newGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	// One attempt by default: the design treats the oracle as
	// fire-and-forget on failure, with no automatic retry.
	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
	}
	if retryOpts.MaxAttempts <= 0 {
		retryOpts.MaxAttempts = 1
	}

	return &Oracle{client: client, logger: logger, retryOpts: retryOpts}, nil
}

const systemPrompt = "Você é o classificador de um caderno de gastos em português do Brasil. " +
	"Responda SOMENTE com um objeto JSON válido, sem texto extra, sem markdown. " +
	"Comece a resposta com { e termine com }."

// Classify asks the model whether the message is a new expense, a query
// over recorded expenses, or neither. Any transport or parse failure is
// returned as an error for the caller to degrade to the "other" action.
func (o *Oracle) Classify(ctx context.Context, text string, hints model.OracleHints) (model.Classification, error) {
	prompt := buildPrompt(text, hints)

	var content string
	err := common.WithRetry(ctx, func() error {
		var completeErr error
		content, completeErr = o.client.Complete(ctx, systemPrompt, prompt)
		return completeErr
	}, o.retryOpts)
	if err != nil {
		return model.Classification{}, fmt.Errorf("%w: %v", common.ErrOracleUnavailable, err)
	}

	classification, err := ParseClassification(content)
	if err != nil {
		o.logger.Warn("oracle returned unparseable content", "error", err)
		return model.Classification{}, err
	}

	o.logger.Debug("oracle classification",
		"action", classification.Action,
		"category", classification.Category)
	return classification, nil
}

func buildPrompt(text string, hints model.OracleHints) string {
	var b strings.Builder
	b.WriteString("Mensagem do usuário")
	if hints.Payer != "" {
		b.WriteString(" (pagador: " + hints.Payer + ")")
	}
	b.WriteString(":\n")
	b.WriteString(text)
	b.WriteString("\n\nCategorias válidas: ")
	b.WriteString(strings.Join(hints.Categories, ", "))
	b.WriteString("\n\nClassifique a mensagem e responda neste formato JSON:\n")
	b.WriteString(`{"action": "record" | "query" | "other",` + "\n")
	b.WriteString(` "amount": <número ou 0>,` + "\n")
	b.WriteString(` "category": "<categoria ou vazio>",` + "\n")
	b.WriteString(` "filters": {"category": "", "payer": "", "period": ""}}` + "\n")
	b.WriteString("\n\"record\" = a mensagem registra um gasto novo (preencha amount e category).\n")
	b.WriteString("\"query\" = a mensagem pergunta sobre gastos já registrados (preencha filters).\n")
	b.WriteString("\"other\" = nenhum dos dois.\n")
	return b.String()
}
