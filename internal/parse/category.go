package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/granabot/granabot/internal/model"
)

// synonyms maps folded informal tokens to canonical category names.
// Keys must already be lowercase and diacritics-free.
var synonyms = map[string]string{
	// Mercado
	"mercado":      "Mercado",
	"supermercado": "Mercado",
	"feira":        "Mercado",
	"hortifruti":   "Mercado",
	"sacolao":      "Mercado",
	"atacadao":     "Mercado",
	"assai":        "Mercado",
	"compras":      "Mercado",

	// Padaria
	"padaria": "Padaria",
	"padoca":  "Padaria",
	"pao":     "Padaria",

	// Restaurantes/ifood
	"ifood":       "Restaurantes/ifood",
	"restaurante": "Restaurantes/ifood",
	"lanche":      "Restaurantes/ifood",
	"lanchonete":  "Restaurantes/ifood",
	"pizza":       "Restaurantes/ifood",
	"hamburguer":  "Restaurantes/ifood",
	"marmita":     "Restaurantes/ifood",
	"delivery":    "Restaurantes/ifood",
	"comida":      "Restaurantes/ifood",

	// Paiol/cigarro
	"paiol":    "Paiol/cigarro",
	"cigarro":  "Paiol/cigarro",
	"cigarros": "Paiol/cigarro",
	"tabaco":   "Paiol/cigarro",
	"fumo":     "Paiol/cigarro",
	"seda":     "Paiol/cigarro",

	// Energeticos
	"energetico":  "Energeticos",
	"energeticos": "Energeticos",
	"monster":     "Energeticos",
	"redbull":     "Energeticos",
	"red bull":    "Energeticos",
	"baly":        "Energeticos",

	// Farmacia
	"farmacia": "Farmacia",
	"drogaria": "Farmacia",
	"remedio":  "Farmacia",
	"remedios": "Farmacia",

	// Transporte
	"uber":           "Transporte",
	"99":             "Transporte",
	"gasolina":       "Transporte",
	"combustivel":    "Transporte",
	"alcool":         "Transporte",
	"onibus":         "Transporte",
	"metro":          "Transporte",
	"transporte":     "Transporte",
	"estacionamento": "Transporte",
	"pedagio":        "Transporte",

	// Contas
	"conta":    "Contas",
	"contas":   "Contas",
	"luz":      "Contas",
	"energia":  "Contas",
	"agua":     "Contas",
	"internet": "Contas",
	"aluguel":  "Contas",
	"telefone": "Contas",
	"celular":  "Contas",
	"gas":      "Contas",

	// Lazer
	"lazer":     "Lazer",
	"cinema":    "Lazer",
	"show":      "Lazer",
	"bar":       "Lazer",
	"cerveja":   "Lazer",
	"balada":    "Lazer",
	"jogo":      "Lazer",
	"netflix":   "Lazer",
	"spotify":   "Lazer",
	"streaming": "Lazer",

	// Pets
	"pet":         "Pets",
	"pets":        "Pets",
	"racao":       "Pets",
	"petshop":     "Pets",
	"veterinario": "Pets",

	// Vestuario
	"vestuario": "Vestuario",
	"roupa":     "Vestuario",
	"roupas":    "Vestuario",
	"tenis":     "Vestuario",
	"sapato":    "Vestuario",
	"camiseta":  "Vestuario",
	"calca":     "Vestuario",

	// Diversos
	"diversos": model.CategoryMisc,
	"outros":   model.CategoryMisc,
	"misc":     model.CategoryMisc,
	"variados": model.CategoryMisc,
}

// scanToken pairs a synonym with its compiled word-boundary pattern for
// free-text scanning.
type scanToken struct {
	re       *regexp.Regexp
	token    string
	category string
}

// scanTokens is ordered longest token first so a compound synonym
// ("red bull") is never shadowed by a shorter substring. Equal-length
// tokens are ordered lexicographically to keep scanning deterministic;
// at scan time the earliest match position in the message wins.
var scanTokens = buildScanTokens()

func buildScanTokens() []scanToken {
	tokens := make([]scanToken, 0, len(synonyms)+len(model.Categories))
	seen := make(map[string]bool, len(synonyms)+len(model.Categories))

	add := func(token, category string) {
		token = Fold(token)
		if seen[token] {
			return
		}
		seen[token] = true
		tokens = append(tokens, scanToken{
			token:    token,
			category: category,
			re:       regexp.MustCompile(`\b` + regexp.QuoteMeta(token) + `\b`),
		})
	}

	for token, category := range synonyms {
		add(token, category)
	}
	// Canonical names are themselves scannable ("listar gastos farmacia").
	for _, c := range model.Categories {
		add(c, c)
	}

	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i].token) != len(tokens[j].token) {
			return len(tokens[i].token) > len(tokens[j].token)
		}
		return tokens[i].token < tokens[j].token
	})
	return tokens
}

// NormalizeCategory canonicalizes a free-text category token. Unmapped or
// empty input falls back to Diversos, so the result is always a member of
// the canonical set.
func NormalizeCategory(raw string) string {
	token := strings.TrimSpace(Fold(raw))
	if token == "" {
		return model.CategoryMisc
	}
	if category, ok := synonyms[token]; ok {
		return category
	}
	if category, ok := model.CanonicalCategory(token); ok {
		return category
	}
	return model.CategoryMisc
}

// FindCategory scans free text for an embedded category mention and
// returns its canonical name. Longer synonyms are tried first; among
// matches, the one appearing earliest in the message wins.
func FindCategory(text string) (string, bool) {
	folded := Fold(text)
	best := ""
	bestPos := -1
	for _, st := range scanTokens {
		loc := st.re.FindStringIndex(folded)
		if loc == nil {
			continue
		}
		if bestPos == -1 || loc[0] < bestPos {
			bestPos = loc[0]
			best = st.category
		}
	}
	if bestPos == -1 {
		return "", false
	}
	return best, true
}
