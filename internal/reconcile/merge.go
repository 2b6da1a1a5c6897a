package reconcile

import "surveyhub/internal/model"

// Merger folds partial records into one record per respondent.
// Common fields are first-writer-wins; survey answers are last-writer-wins per question ID.
type Merger struct {
	records map[string]*model.Record
	order   []string
}

func NewMerger() *Merger {
	return &Merger{records: make(map[string]*model.Record)}
}

// Apply merges one feed's partials. Feeds must be applied in processing order.
func (m *Merger) Apply(partials []Partial) {
	for _, p := range partials {
		rec, ok := m.records[p.RespondentID]
		if !ok {
			rec = &model.Record{
				RespondentID: p.RespondentID,
				Fields:       p.Fields,
				SurveyData:   make(map[string]model.AnswerEntry, len(p.Answers)),
			}
			m.records[p.RespondentID] = rec
			m.order = append(m.order, p.RespondentID)
		}

		for qid, entry := range p.Answers {
			rec.SurveyData[qid] = entry
		}
	}
}

// Records returns the merged records in order of first appearance
func (m *Merger) Records() []*model.Record {
	records := make([]*model.Record, 0, len(m.order))
	for _, id := range m.order {
		records = append(records, m.records[id])
	}
	return records
}

// Get returns the merged record for a respondent, or nil
func (m *Merger) Get(respondentID string) *model.Record {
	return m.records[respondentID]
}

func (m *Merger) Len() int {
	return len(m.order)
}
