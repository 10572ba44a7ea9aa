package triage

import "github.com/crimson-sun/triage/internal/engine/taxonomy"

// DefaultCategories returns the 36 disaster-response categories in the
// column order of the message store.
func DefaultCategories() []string {
	return taxonomy.Default().Names()
}
