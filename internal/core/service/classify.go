package service

import (
	"strings"

	"github.com/titanshop/storefront/internal/core/domain"
)

// Closed keyword sets for the two fixed category buckets, in source and
// transliterated script. Matching is case-insensitive substring.
var injectableKeywords = []string{
	"инъекц", "inject", "ампул", "флакон", "мл", "ml",
	"тестостерон", "testosterone", "энантат", "enanthate",
	"пропионат", "propionate", "ципионат", "cypionate",
	"тренболон", "trenbolone", "болденон", "boldenone",
	"нандролон", "nandrolone", "мастерон", "masteron",
	"примоболан", "primobolan",
}

var oralKeywords = []string{
	"ораль", "oral", "таблетк", "tablet", "капсул", "capsule",
	"кломид", "clomid", "кломифен", "clomiphene",
	"тамоксифен", "tamoxifen", "анастрозол", "anastrozole",
	"кленбутерол", "clenbuterol", "тадалафил", "tadalafil",
	"силденафил", "sildenafil", "варденафил", "vardenafil",
}

var (
	injectableFamilyTokens = []string{"инъекц", "inject"}
	oralFamilyTokens       = []string{"ораль", "oral"}
)

// Classify assigns a product to a category bucket. The precedence is
// fixed: a keyword hit anywhere in name, raw category or description
// beats a family token in the raw category alone, and injectable beats
// oral at each step.
func Classify(name, rawCategory, description string) string {
	text := strings.ToLower(name + " " + rawCategory + " " + description)
	category := strings.ToLower(rawCategory)

	switch {
	case containsAny(text, injectableKeywords):
		return domain.CategoryInjectable
	case containsAny(text, oralKeywords):
		return domain.CategoryOral
	case containsAny(category, injectableFamilyTokens):
		return domain.CategoryInjectable
	case containsAny(category, oralFamilyTokens):
		return domain.CategoryOral
	case rawCategory != "":
		return rawCategory
	}
	return domain.CategoryOther
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
