package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"surveyhub/internal/model"
)

// ResponseRepo stores reconciled respondent documents
type ResponseRepo interface {
	CollectionExists(ctx context.Context) (bool, error)
	ReplaceAll(ctx context.Context, docs []model.Document) (int, error)
	FindAll(ctx context.Context) ([]model.Document, error)
	FindByRespondentID(ctx context.Context, respondentID string) (*model.Document, error)
	Replace(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, respondentID string) error
	EnsureIndexes(ctx context.Context) error
}

const stagingSuffix = "_staging"

type responseRepo struct {
	db         *mongo.Database
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewResponseRepo returns a repository over the named collection
func NewResponseRepo(db *mongo.Database, collection string, logger *zap.Logger) ResponseRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &responseRepo{
		db:         db,
		collection: db.Collection(collection),
		logger:     logger.Named("response_repo"),
	}
}

func (r *responseRepo) CollectionExists(ctx context.Context) (bool, error) {
	names, err := r.db.ListCollectionNames(ctx, bson.M{"name": r.collection.Name()})
	if err != nil {
		return false, fmt.Errorf("failed to list collections: %w", err)
	}
	return len(names) > 0, nil
}

// ReplaceAll writes docs to a staging collection and renames it over the
// target. The target keeps its old contents, or stays absent, unless every
// document was written.
func (r *responseRepo) ReplaceAll(ctx context.Context, docs []model.Document) (int, error) {
	if len(docs) == 0 {
		return 0, ErrNoDocuments
	}

	staging := r.db.Collection(r.collection.Name() + stagingSuffix)
	// leftovers of an interrupted run
	if err := staging.Drop(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear staging collection: %w", err)
	}

	items := make([]interface{}, len(docs))
	for i := range docs {
		items[i] = docs[i]
	}
	res, err := staging.InsertMany(ctx, items, options.InsertMany().SetOrdered(true))
	if err != nil {
		r.dropStaging(ctx, staging)
		return 0, fmt.Errorf("failed to insert documents: %w", err)
	}

	cmd := bson.D{
		{Key: "renameCollection", Value: r.db.Name() + "." + staging.Name()},
		{Key: "to", Value: r.db.Name() + "." + r.collection.Name()},
		{Key: "dropTarget", Value: true},
	}
	if err := r.db.Client().Database("admin").RunCommand(ctx, cmd).Err(); err != nil {
		r.dropStaging(ctx, staging)
		return 0, fmt.Errorf("failed to swap in %s: %w", r.collection.Name(), err)
	}
	return len(res.InsertedIDs), nil
}

func (r *responseRepo) dropStaging(ctx context.Context, staging *mongo.Collection) {
	if err := staging.Drop(context.WithoutCancel(ctx)); err != nil {
		r.logger.Warn("failed to drop staging collection", zap.String("collection", staging.Name()), zap.Error(err))
	}
}

func (r *responseRepo) FindAll(ctx context.Context) ([]model.Document, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []model.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

// FindByRespondentID looks a document up by its respondent identity ("id")
func (r *responseRepo) FindByRespondentID(ctx context.Context, respondentID string) (*model.Document, error) {
	var doc model.Document
	err := r.collection.FindOne(ctx, bson.M{"id": respondentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document %s: %w", respondentID, err)
	}
	return &doc, nil
}

// Replace overwrites the stored document with the same record ID
func (r *responseRepo) Replace(ctx context.Context, doc *model.Document) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.RecordID}, doc)
	if err != nil {
		return fmt.Errorf("failed to replace document %s: %w", doc.RespondentID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *responseRepo) Delete(ctx context.Context, respondentID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"id": respondentID})
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", respondentID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the lookup indexes. Respondent identities are unique per collection.
func (r *responseRepo) EnsureIndexes(ctx context.Context) error {
	if err := r.createIndex(ctx, bson.D{{Key: "id", Value: 1}}, true); err != nil {
		return err
	}
	// secondary indexes are best effort
	for _, field := range []string{"status", "date_submitted"} {
		if err := r.createIndex(ctx, bson.D{{Key: field, Value: 1}}, false); err != nil {
			r.logger.Warn("failed to create index", zap.String("field", field), zap.Error(err))
		}
	}
	return nil
}

func (r *responseRepo) createIndex(ctx context.Context, keys bson.D, unique bool) error {
	opts := options.Index().SetUnique(unique)
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		return fmt.Errorf("failed to create index on %s: %w", r.collection.Name(), err)
	}
	return nil
}
