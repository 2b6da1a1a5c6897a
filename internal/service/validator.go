package service

import (
	"fmt"
	"sort"

	"surveyhub/internal/model"
)

// rankChoices is how many options a ranked answer must order
const rankChoices = 3

// Validator checks stored documents for completeness
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns every problem found in doc; an empty result means the document is valid.
// A common field fails when it is the empty string; null is accepted.
func (v *Validator) Validate(doc *model.Document) []model.ValidationIssue {
	issues := []model.ValidationIssue{}

	if doc.RecordID.IsZero() {
		issues = append(issues, model.ValidationIssue{Field: "_id", Message: "record id is missing"})
	}
	if doc.RespondentID == "" {
		issues = append(issues, model.ValidationIssue{Field: "id", Message: "respondent id is missing or empty"})
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"contact_id", doc.ContactID},
		{"country", doc.Country},
		{"date_started", doc.DateStarted},
		{"date_submitted", doc.DateSubmitted},
		{"ip_address", doc.IPAddress},
		{"language", doc.Language},
		{"referer", doc.Referer},
		{"session_id", doc.SessionID},
		{"status", doc.Status},
		{"user_agent", doc.UserAgent},
	}
	for _, f := range fields {
		if f.value != nil && *f.value == "" {
			issues = append(issues, model.ValidationIssue{Field: f.name, Message: "field is empty"})
		}
	}

	if doc.SurveyData == nil {
		issues = append(issues, model.ValidationIssue{Field: "survey_data", Message: "survey data is missing"})
		return issues
	}

	qids := make([]string, 0, len(doc.SurveyData))
	for qid := range doc.SurveyData {
		qids = append(qids, qid)
	}
	sort.Strings(qids)

	for _, qid := range qids {
		issues = append(issues, v.validateEntry(qid, doc.SurveyData[qid])...)
	}
	return issues
}

func (v *Validator) validateEntry(qid string, e model.AnswerEntry) []model.ValidationIssue {
	var issues []model.ValidationIssue

	if e.Question == nil || *e.Question == "" {
		issues = append(issues, model.ValidationIssue{QuestionID: qid, Message: "question label is missing or empty"})
	}

	if e.Type != nil && *e.Type == model.QuestionTypeRank {
		if e.Answer.IsList() && len(e.Answer.Choices) != rankChoices {
			issues = append(issues, model.ValidationIssue{
				QuestionID: qid,
				Message:    fmt.Sprintf("ranked answer has %d choices, want %d", len(e.Answer.Choices), rankChoices),
			})
		}
	} else if e.Answer.IsList() {
		issues = append(issues, model.ValidationIssue{QuestionID: qid, Message: "answer must be a string or null"})
	}

	return issues
}
