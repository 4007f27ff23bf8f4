package router

import (
	"fmt"
	"strings"

	"github.com/granabot/granabot/internal/model"
)

// User-facing guidance. Every failure surfaces as natural language with
// a corrective example, never an error code.
const (
	replyNeedCategory = "Preciso saber a categoria. Ex.: \"listar gastos mercado\" ou \"mostrar gastos farmácia\"."

	replyRefNotFound = "Não encontrei essa referência. A lista pode ter expirado — " +
		"liste os gastos de novo e use o número (#1) ou o código entre colchetes."

	replyRecordGone = "Esse lançamento não existe mais. Liste os gastos de novo para conferir."

	replyRecordHint = "Não consegui entender o lançamento. Escreva a categoria e o valor, ex.: \"mercado 54,90\"."

	replyStorageTrouble = "Tive um problema para acessar o caderno agora. Tenta de novo em instantes."

	replyHelp = "Não entendi. Alguns exemplos:\n" +
		"• registrar: \"paiol 16\" ou \"mercado 54,90 e padaria 8\"\n" +
		"• consultar: \"quanto gastei com energeticos esse mês\"\n" +
		"• listar: \"listar gastos mercado\"\n" +
		"• editar: \"alterar #2 para 12,90\", \"mover #1 para lazer\", \"apagar #3\""
)

// formatBRL renders a value in Brazilian format: 1.234,56.
func formatBRL(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	out := b.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// formatRecorded confirms newly written records.
func formatRecorded(records []model.Record) string {
	if len(records) == 1 {
		r := records[0]
		return fmt.Sprintf("✅ Anotado: %s — R$ %s", r.Category, formatBRL(r.Amount))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("✅ Anotados %d gastos:\n", len(records)))
	total := 0.0
	for _, r := range records {
		b.WriteString(fmt.Sprintf("• %s — R$ %s\n", r.Category, formatBRL(r.Amount)))
		total += r.Amount
	}
	b.WriteString(fmt.Sprintf("Total: R$ %s", formatBRL(total)))
	return b.String()
}

// formatListing renders the detail rows with ordinal and short-id hints,
// split into chunks of at most pageChars characters.
func formatListing(records []model.Record, category, periodLabel string, pageChars int) []string {
	total := 0.0
	for _, r := range records {
		total += r.Amount
	}

	header := fmt.Sprintf("Gastos de %s — %s (%d itens, total R$ %s)",
		category, periodLabel, len(records), formatBRL(total))

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, header)
	for i, r := range records {
		lines = append(lines, fmt.Sprintf("#%d %s — R$ %s — %s [%s]",
			i+1,
			r.Timestamp.Format("02/01"),
			formatBRL(r.Amount),
			r.Payer,
			r.ShortID()))
	}

	return chunkLines(lines, pageChars)
}

// chunkLines packs lines into messages no longer than limit characters.
// A single oversized line still goes out alone rather than being dropped.
func chunkLines(lines []string, limit int) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range lines {
		if current.Len() > 0 && current.Len()+1+len(line) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func formatEmptyListing(category, periodLabel string) string {
	return fmt.Sprintf("Nenhum gasto de %s em %s.", category, periodLabel)
}

// formatSummary renders the summation form of a query.
func formatSummary(summary model.Summary, category, periodLabel string) string {
	what := "gastos"
	if category != "" {
		what = "gastos de " + category
	}
	if summary.Count == 0 {
		return fmt.Sprintf("Nenhum %s em %s.", what, periodLabel)
	}
	return fmt.Sprintf("Você tem %d %s em %s, total R$ %s.",
		summary.Count, what, periodLabel, formatBRL(summary.Total))
}

func formatDeleted(r *model.Record) string {
	return fmt.Sprintf("🗑️ Apagado: %s — R$ %s (%s)", r.Category, formatBRL(r.Amount), r.Timestamp.Format("02/01"))
}

func formatMoved(r *model.Record, category string) string {
	return fmt.Sprintf("↪️ Movido para %s: R$ %s (%s)", category, formatBRL(r.Amount), r.Timestamp.Format("02/01"))
}

func formatAmountChanged(r *model.Record, amount float64) string {
	return fmt.Sprintf("✏️ Valor alterado: %s — de R$ %s para R$ %s",
		r.Category, formatBRL(r.Amount), formatBRL(amount))
}
