package usecase

import (
	"sort"
	"strings"

	"github.com/nutridex/backend/internal/domain"
)

// noMatchIndex sorts names that do not contain the query behind every
// possible match position.
const noMatchIndex = 1 << 30

// rankByRelevance orders products so that names containing the query
// come first, earlier occurrences ahead of later ones. The sort is
// stable: ties keep encounter order, which makes the final list
// deterministic for identical provider responses.
func rankByRelevance(query string, products []domain.NormalizedProduct) {
	queryLower := strings.ToLower(query)
	sort.SliceStable(products, func(i, j int) bool {
		return relevanceIndex(queryLower, products[i].Name) < relevanceIndex(queryLower, products[j].Name)
	})
}

// relevanceIndex returns the position of the lowercased query inside
// the name, or noMatchIndex when absent.
func relevanceIndex(queryLower, name string) int {
	idx := strings.Index(strings.ToLower(name), queryLower)
	if idx < 0 {
		return noMatchIndex
	}
	return idx
}
