package editors

import (
	"context"
	"time"

	"github.com/helperkit/tagstore/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EditorRepository defines persistence operations for editors
type EditorRepository interface {
	UpsertByUsername(ctx context.Context, e *models.Editor) (*models.Editor, error)
	GetByUsername(ctx context.Context, username string) (*models.Editor, error)
}

// MongoEditorRepository implements EditorRepository using MongoDB
type MongoEditorRepository struct {
	col *mongo.Collection
}

// NewMongoEditorRepository creates a new repository for the given collection
func NewMongoEditorRepository(col *mongo.Collection) *MongoEditorRepository {
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoEditorRepository{col: col}
}

func (r *MongoEditorRepository) UpsertByUsername(ctx context.Context, e *models.Editor) (*models.Editor, error) {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	filter := bson.M{"username": e.Username}
	repl := bson.M{"$set": bson.M{
		"displayName":  e.DisplayName,
		"passwordHash": e.PasswordHash,
		"role":         e.Role,
		"updatedAt":    e.UpdatedAt,
		"createdAt":    e.CreatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.Editor
	if err := r.col.FindOneAndUpdate(ctx, filter, repl, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			// Shouldn't happen because of upsert, but handle gracefully
			return e, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoEditorRepository) GetByUsername(ctx context.Context, username string) (*models.Editor, error) {
	var e models.Editor
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
