// Package retrieval shapes raw store results into the structured text blocks
// the generation backend consumes.
package retrieval

import (
	"go.uber.org/zap"

	"github.com/talenttrack/hr-assistant/internal/hrms"
	"github.com/talenttrack/hr-assistant/internal/topic"
)

// Filter is a single filtering step applied to retrieved documents.
type Filter interface {
	Name() string
	Apply(docs []*hrms.Document) ([]*hrms.Document, Step)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the filters sequentially, logging a summary per step.
func Run(logger *zap.Logger, filters []Filter, docs []*hrms.Document) []*hrms.Document {
	for _, filter := range filters {
		next, info := filter.Apply(docs)
		if logger != nil {
			logger.Debug("retrieval filter step",
				zap.String("name", filter.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}
		docs = next
	}
	return docs
}

type topicFilter struct {
	allowed map[string]struct{}
}

// NewTopicFilter keeps only documents whose type tag matches one of the
// resolved topics. With no topics it passes everything through.
func NewTopicFilter(topics []topic.Topic) Filter {
	allowed := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		allowed[string(t)] = struct{}{}
	}
	return &topicFilter{allowed: allowed}
}

func (f *topicFilter) Name() string { return "topic" }

func (f *topicFilter) Apply(docs []*hrms.Document) ([]*hrms.Document, Step) {
	initial := len(docs)
	if len(f.allowed) == 0 {
		return docs, Step{Initial: initial, Left: initial}
	}

	kept := make([]*hrms.Document, 0, len(docs))
	for _, doc := range docs {
		if _, ok := f.allowed[doc.Type()]; ok {
			kept = append(kept, doc)
		}
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}

type activeJobFilter struct{}

// NewActiveJobFilter drops job documents that are not in active status.
// Non-job documents pass through untouched.
func NewActiveJobFilter() Filter {
	return &activeJobFilter{}
}

func (f *activeJobFilter) Name() string { return "active_job" }

func (f *activeJobFilter) Apply(docs []*hrms.Document) ([]*hrms.Document, Step) {
	initial := len(docs)

	kept := make([]*hrms.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Type() == "job" && !doc.IsActiveJob() {
			continue
		}
		kept = append(kept, doc)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}
