package models

// BorrowMode says whether a palace is read with its own major stars or with
// those of its opposite palace.
type BorrowMode string

const (
	ModeDirect BorrowMode = "direct"
	ModeBorrow BorrowMode = "borrow"
)

// AnnualHua is one annual transformation landing in a palace.
type AnnualHua struct {
	Star     string `json:"star"`
	Kind     string `json:"kind"`
	Borrowed bool   `json:"borrowed,omitempty"`
}

// Annotation is derived per palace and never persisted.
type Annotation struct {
	Index           int         `json:"index"`
	Key             string      `json:"key"`
	Mode            BorrowMode  `json:"mode"`
	SourceIndex     int         `json:"source_index"`
	EffectiveMajors []string    `json:"effective_majors"`
	Annual          []AnnualHua `json:"annual,omitempty"`
}

// Borrowed reports whether the palace is read through its opposite.
func (a Annotation) Borrowed() bool {
	return a.Mode == ModeBorrow
}
