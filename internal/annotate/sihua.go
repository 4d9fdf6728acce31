package annotate

// Transformation letters.
const (
	Lu   = "祿"
	Quan = "權"
	Ke   = "科"
	Ji   = "忌"
)

// Stars the 2026 (丙午) overlay singles out: the palace holding the 忌 star
// is the year's pressure point, the palace holding the 祿 star its opening.
const (
	PressureStar = "廉貞"
	FortuneStar  = "天同"
)

// annual2026 is the 丙午 year stem's transformation table: 同機昌廉.
var annual2026 = map[string]string{
	"天同": Lu,
	"天機": Quan,
	"文昌": Ke,
	"廉貞": Ji,
}

// AnnualHua returns the 2026 transformation a star receives, if any.
func AnnualHua(star string) (string, bool) {
	k, ok := annual2026[star]
	return k, ok
}

// AnnualStars returns the star carrying each transformation letter.
func AnnualStars() map[string]string {
	out := make(map[string]string, len(annual2026))
	for star, kind := range annual2026 {
		out[kind] = star
	}
	return out
}
