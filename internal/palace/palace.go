// Package palace holds the fixed vocabulary of a chart: the 12 canonical
// palace keys, the earthly branches and heavenly stems, and the opposite
// relation between palace indices.
package palace

// Count is the number of palaces in every chart.
const Count = 12

// Key is one of the 12 canonical palace categories. Knowledge-base lookups
// are keyed by Key, never by display name.
type Key int

const (
	Unknown  Key = iota
	Soul         // 命
	Siblings     // 兄弟
	Spouse       // 夫妻
	Children     // 子女
	Wealth       // 財帛
	Health       // 疾厄
	Travel       // 遷移
	Friends      // 交友
	Career       // 官祿
	Property     // 田宅
	Spirit       // 福德
	Parents      // 父母
)

var keyNames = [...]string{
	Unknown:  "",
	Soul:     "命",
	Siblings: "兄弟",
	Spouse:   "夫妻",
	Children: "子女",
	Wealth:   "財帛",
	Health:   "疾厄",
	Travel:   "遷移",
	Friends:  "交友",
	Career:   "官祿",
	Property: "田宅",
	Spirit:   "福德",
	Parents:  "父母",
}

// String returns the canonical Chinese name used in the knowledge base.
func (k Key) String() string {
	if k < 0 || int(k) >= len(keyNames) {
		return ""
	}
	return keyNames[k]
}

// Display returns the name with the 宮 suffix where convention adds it.
func (k Key) Display() string {
	switch k {
	case Unknown:
		return ""
	case Soul:
		return "命宮"
	default:
		return k.String()
	}
}

// Keys lists the canonical keys in traditional palace order.
func Keys() []Key {
	return []Key{Soul, Siblings, Spouse, Children, Wealth, Health, Travel, Friends, Career, Property, Spirit, Parents}
}

// KeyByName resolves a canonical name ("命", "官祿", …) to its Key. It does
// not fold aliases; use Normalize for raw display names.
func KeyByName(name string) Key {
	for k, n := range keyNames {
		if n != "" && n == name {
			return Key(k)
		}
	}
	return Unknown
}

// Opposite returns the index diametrically across the chart.
func Opposite(i int) int {
	return ((i+6)%Count + Count) % Count
}

// Next and Prev wrap around the ring of palaces.
func Next(i int) int { return ((i+1)%Count + Count) % Count }
func Prev(i int) int { return ((i-1)%Count + Count) % Count }

// ValidIndex reports whether i addresses a palace.
func ValidIndex(i int) bool { return i >= 0 && i < Count }

var branches = [Count]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

var stems = [10]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

// BranchIndex returns the 0-based position of a branch starting at 子, or -1.
func BranchIndex(b string) int {
	for i, name := range branches {
		if name == b {
			return i
		}
	}
	return -1
}

func IsBranch(b string) bool { return BranchIndex(b) >= 0 }

func IsStem(s string) bool {
	for _, name := range stems {
		if name == s {
			return true
		}
	}
	return false
}

// Branches returns the branches in order starting at 子.
func Branches() []string {
	return append([]string(nil), branches[:]...)
}
