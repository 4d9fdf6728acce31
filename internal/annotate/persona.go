package annotate

import "ziwei/internal/kb"

// PersonaKey finds the knowledge-base entry for a palace's effective majors.
// Two-star combinations win over single stars, and both orders are tried
// because the knowledge base stores each pair once. Order: A+B, B+A, A.
func PersonaKey(base *kb.Base, majors []string) (string, kb.Persona, bool) {
	if len(majors) == 0 {
		return "", kb.Persona{}, false
	}
	candidates := make([]string, 0, 3)
	if len(majors) >= 2 {
		a, b := majors[0], majors[1]
		candidates = append(candidates, a+b, b+a)
	}
	candidates = append(candidates, majors[0])

	for _, key := range candidates {
		if p, ok := base.Persona(key); ok {
			return key, p, true
		}
	}
	return "", kb.Persona{}, false
}
