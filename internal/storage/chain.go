package storage

import (
	"strings"

	"github.com/julianstephens/memosphere/internal/models"
)

// walkChain follows linkedEntryId references starting from (but not
// including) the entry identified by startID. Each linked entry is appended to
// the chain, so the result runs from the most recent ancestor to the original
// entry, oldest last.
//
// The walk stops at a missing or dangling link, includes a non-reflection
// ancestor as the final element, and treats a repeated id as a stop condition
// so traversal terminates even on malformed cyclic data.
func walkChain(startID string, lookup func(id string) (models.Entry, bool, error)) ([]models.Entry, error) {
	chain := []models.Entry{}

	current, ok, err := lookup(startID)
	if err != nil || !ok {
		return chain, err
	}

	visited := map[string]bool{current.ID: true}
	for current.LinkedEntryID != "" {
		next, ok, err := lookup(current.LinkedEntryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Dangling link: the referent was deleted. End of chain.
			break
		}
		if visited[next.ID] {
			// Links can never cycle by construction; stop anyway.
			break
		}
		visited[next.ID] = true
		chain = append(chain, next)
		if !next.IsReflection {
			break
		}
		current = next
	}

	return chain, nil
}

// matchesQuery reports whether the entry's title, content, or tag names
// contain the (already lowercased) query.
func matchesQuery(entry models.Entry, query string) bool {
	if strings.Contains(strings.ToLower(entry.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(entry.Content), query) {
		return true
	}
	for _, f := range entry.Feelings {
		if strings.Contains(strings.ToLower(f.Name), query) {
			return true
		}
	}
	for _, a := range entry.Activities {
		if strings.Contains(strings.ToLower(a.Name), query) {
			return true
		}
	}
	return false
}
