package hrms

import (
	"context"
	"sort"
	"strings"
)

// MemoryDocumentStore is a DocumentStore over an in-process document set,
// scored by token overlap between the query and document content. It stands
// in for the external vector store in tests and single-binary deployments.
type MemoryDocumentStore struct {
	docs []*Document
}

func NewMemoryDocumentStore(docs []*Document) *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: docs}
}

func (m *MemoryDocumentStore) Add(doc *Document) {
	m.docs = append(m.docs, doc)
}

func (m *MemoryDocumentStore) SimilaritySearch(_ context.Context, query string, k int) ([]*Document, error) {
	if k <= 0 {
		return nil, nil
	}

	queryTokens := tokenSet(query)

	type scored struct {
		doc   *Document
		score int
		order int
	}

	ranked := make([]scored, 0, len(m.docs))
	for i, doc := range m.docs {
		score := 0
		for token := range tokenSet(doc.Content) {
			if _, ok := queryTokens[token]; ok {
				score++
			}
		}
		ranked = append(ranked, scored{doc: doc, score: score, order: i})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	results := make([]*Document, 0, len(ranked))
	for _, entry := range ranked {
		results = append(results, entry.doc)
	}

	return results, nil
}

func tokenSet(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,:;!?()[]\"'")
		if token != "" {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}
