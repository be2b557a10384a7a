package retrieval

import (
	"strings"

	"github.com/talenttrack/hr-assistant/internal/hrms"
)

// FormatDocuments renders documents grouped by type under topic headers.
// Distinct topics stay in separate labeled sections; group order follows
// first appearance in the input.
func FormatDocuments(docs []*hrms.Document) string {
	grouped := make(map[string][]*hrms.Document)
	var order []string
	for _, doc := range docs {
		docType := doc.Type()
		if _, ok := grouped[docType]; !ok {
			order = append(order, docType)
		}
		grouped[docType] = append(grouped[docType], doc)
	}

	var blocks []string
	for _, docType := range order {
		var b strings.Builder
		b.WriteString(header(docType))
		b.WriteString(":\n")
		for i, doc := range grouped[docType] {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(strings.TrimSpace(doc.Content))
			b.WriteString("\n")
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}

	return strings.Join(blocks, "\n\n")
}

func header(docType string) string {
	if docType == "" {
		return "Other"
	}
	words := strings.Split(strings.ReplaceAll(docType, "_", " "), " ")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
