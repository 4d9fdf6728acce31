package palace

import (
	"strings"

	"golang.org/x/text/width"
)

// aliases folds the names different engine locales and older texts use onto
// the canonical key names.
var aliases = map[string]Key{
	"命":  Soul,
	"兄弟": Siblings,
	"夫妻": Spouse,
	"子女": Children,
	"男女": Children,
	"財帛": Wealth,
	"财帛": Wealth,
	"疾厄": Health,
	"遷移": Travel,
	"迁移": Travel,
	"交友": Friends,
	"僕役": Friends,
	"仆役": Friends,
	"奴僕": Friends,
	"奴仆": Friends,
	"官祿": Career,
	"官禄": Career,
	"事業": Career,
	"事业": Career,
	"田宅": Property,
	"福德": Spirit,
	"父母": Parents,
	"相貌": Parents,
}

// Normalize maps a raw palace display name onto its canonical Key. The order
// is fixed: fold full-width characters, trim, drop any parenthetical or
// bracketed suffix, drop the trailing 宮, then look up aliases. Names that
// still do not match report false.
func Normalize(name string) (Key, bool) {
	s := width.Fold.String(name)
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "([【"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.TrimSuffix(s, "宮")
	s = strings.TrimSuffix(s, "宫")
	s = strings.TrimSpace(s)

	k, ok := aliases[s]
	return k, ok
}

// KeyOf is Normalize for callers that treat unmatched names as Unknown.
func KeyOf(name string) Key {
	k, _ := Normalize(name)
	return k
}
