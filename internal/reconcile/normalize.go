package reconcile

import (
	"surveyhub/internal/model"
)

// Partial is one feed's contribution for one respondent
type Partial struct {
	RespondentID string
	Fields       model.CommonFields
	Answers      map[string]model.AnswerEntry
}

// question is pulled out of a feed entry before its answer is normalized
type question struct {
	id       string
	label    *string
	encoding Encoding
	comments any
	kind     *string
}

// Layout describes where one feed keeps its questions inside a respondent entry
type Layout struct {
	Source    model.Source
	questions func(entry map[string]any, r *Resolver) []question
}

var (
	// FirstLayout: survey_data is a map keyed by native question ID
	FirstLayout = Layout{Source: model.SourceFirst, questions: firstQuestions}
	// SecondLayout: questions are flat keys named by their label
	SecondLayout = Layout{Source: model.SourceSecond, questions: secondQuestions}
	// ThirdLayout: survey_data.item is a list of items carrying their native ID
	ThirdLayout = Layout{Source: model.SourceThird, questions: thirdQuestions}
)

// LayoutFor returns the layout of a feed
func LayoutFor(src model.Source) Layout {
	switch src {
	case model.SourceSecond:
		return SecondLayout
	case model.SourceThird:
		return ThirdLayout
	default:
		return FirstLayout
	}
}

// Normalizer turns one feed's entries into partial records
type Normalizer struct {
	layout   Layout
	resolver *Resolver
}

func NewNormalizer(layout Layout, resolver *Resolver) *Normalizer {
	return &Normalizer{layout: layout, resolver: resolver}
}

// Normalize returns one partial per entry, in entry order, and the number of
// entries skipped for lacking a respondent identity
func (n *Normalizer) Normalize(entries []map[string]any) ([]Partial, int) {
	partials := make([]Partial, 0, len(entries))
	skipped := 0

	for _, entry := range entries {
		id, fields := ExtractCommon(entry)
		if id == "" {
			skipped++
			continue
		}

		p := Partial{
			RespondentID: id,
			Fields:       fields,
			Answers:      make(map[string]model.AnswerEntry),
		}
		for _, q := range n.layout.questions(entry, n.resolver) {
			p.Answers[q.id] = model.AnswerEntry{
				Question: q.label,
				Answer:   NormalizeAnswer(q.encoding),
				Comments: nonEmpty(q.comments),
				Type:     q.kind,
			}
		}
		partials = append(partials, p)
	}

	return partials, skipped
}

// Source 1 is the ID authority: entries are keyed by their native ID.
// Questions are visited in document order, so with a duplicate label the
// later question wins in the resolver.
func firstQuestions(entry map[string]any, _ *Resolver) []question {
	keys, data := orderedMap(entry["survey_data"])
	questions := make([]question, 0, len(keys))

	for _, id := range keys {
		qd := asMap(data[id])
		questions = append(questions, question{
			id:       id,
			label:    stringValue(qd["question"]),
			encoding: DecodeValue(qd["answer"]),
			comments: qd["comments"],
			kind:     stringValue(qd["type"]),
		})
	}
	return questions
}

// Source 2 keys questions by label and may embed JSON in the answer string.
// Only common fields are skipped, so "<label>_comments" keys are questions too.
func secondQuestions(entry map[string]any, r *Resolver) []question {
	var questions []question

	for _, key := range sortedKeys(entry) {
		if isCommonKey(key) {
			continue
		}
		label := key
		questions = append(questions, question{
			id:       r.Resolve(key),
			label:    &label,
			encoding: DecodeEmbedded(entry[key]),
			comments: entry[key+CommentsSuffix],
			kind:     r.TypeOf(key),
		})
	}
	return questions
}

// Source 3 items carry their own native ID, which keys this feed's entries
func thirdQuestions(entry map[string]any, r *Resolver) []question {
	items := asList(dig(entry, "survey_data", wrapperKey))
	questions := make([]question, 0, len(items))

	for _, raw := range items {
		item := asMap(raw)
		if item == nil {
			continue
		}
		label := stringValue(item["question"])

		var id string
		if s := stringValue(item["id"]); s != nil && *s != "" {
			id = *s
		} else {
			id = r.Resolve(labelText(label))
		}

		questions = append(questions, question{
			id:       id,
			label:    label,
			encoding: DecodeValue(item["answer"]),
			comments: item["comments"],
			kind:     r.TypeOf(labelText(label)),
		})
	}
	return questions
}
