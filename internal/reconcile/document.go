package reconcile

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"surveyhub/internal/model"
)

// IDGenerator allocates a fresh record identifier
type IDGenerator func() primitive.ObjectID

// BuildDocuments converts merged records into storage documents, keeping their order.
// A respondent identity that is a valid ObjectID hex becomes the record ID;
// any other identity gets a generated one. No record is dropped.
func BuildDocuments(records []*model.Record, newID IDGenerator) []model.Document {
	if newID == nil {
		newID = primitive.NewObjectID
	}

	docs := make([]model.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, model.Document{
			RecordID:     recordID(rec.RespondentID, newID),
			RespondentID: rec.RespondentID,
			CommonFields: rec.Fields,
			SurveyData:   rec.SurveyData,
		})
	}
	return docs
}

func recordID(respondentID string, newID IDGenerator) primitive.ObjectID {
	if oid, err := primitive.ObjectIDFromHex(respondentID); err == nil {
		return oid
	}
	return newID()
}
