package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommonFields are the respondent-level attributes shared by all three feeds
type CommonFields struct {
	ContactID     *string `json:"contact_id" bson:"contact_id"`
	Status        *string `json:"status" bson:"status"`
	DateSubmitted *string `json:"date_submitted" bson:"date_submitted"`
	SessionID     *string `json:"session_id" bson:"session_id"`
	Language      *string `json:"language" bson:"language"`
	DateStarted   *string `json:"date_started" bson:"date_started"`
	IPAddress     *string `json:"ip_address" bson:"ip_address"`
	Referer       *string `json:"referer" bson:"referer"`
	UserAgent     *string `json:"user_agent" bson:"user_agent"`
	Country       *string `json:"country" bson:"country"`
}

// Record is the merged view of one respondent while a reconciliation pass runs
type Record struct {
	RespondentID string
	Fields       CommonFields
	SurveyData   map[string]AnswerEntry // canonical question ID -> entry
}

// Document is the storage-ready form of a Record
type Document struct {
	RecordID     primitive.ObjectID `json:"_id" bson:"_id"`
	RespondentID string             `json:"id" bson:"id"`
	CommonFields `bson:",inline"`
	SurveyData   map[string]AnswerEntry `json:"survey_data" bson:"survey_data"`
}

// DocumentUpdate carries the writable parts of a stored document
type DocumentUpdate struct {
	CommonFields
	SurveyData map[string]AnswerEntry `json:"survey_data"`
}
