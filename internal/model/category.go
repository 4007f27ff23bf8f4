package model

import "strings"

// CategoryMisc is the fallback category for anything the normalizer
// cannot map. Every stored record carries one of the canonical names.
const CategoryMisc = "Diversos"

// Categories is the closed canonical set. Order matters only for display.
var Categories = []string{
	"Mercado",
	"Padaria",
	"Restaurantes/ifood",
	"Paiol/cigarro",
	"Energeticos",
	"Farmacia",
	"Transporte",
	"Contas",
	"Lazer",
	"Pets",
	"Vestuario",
	CategoryMisc,
}

// CanonicalCategory resolves a name against the canonical set
// case-insensitively and returns the canonical spelling.
func CanonicalCategory(name string) (string, bool) {
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// IsCanonicalCategory reports whether name is a member of the canonical
// set (case-insensitive).
func IsCanonicalCategory(name string) bool {
	_, ok := CanonicalCategory(name)
	return ok
}

// PayerUnknown is recorded when the sender identity has no configured
// payer mapping.
const PayerUnknown = "Desconhecido"
