package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/helperkit/tagstore/internal/tag"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements a MongoDB-backed tag repository. Name uniqueness is
// delegated to a unique index; duplicate-key errors surface as ErrAlreadyExists.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, t *tag.Tag) (string, error) {
	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	t.CreatedAt = time.Now().UTC()
	if _, err := m.col.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrAlreadyExists
		}
		return "", err
	}
	return t.ID, nil
}

func (m *MongoRepo) GetByName(ctx context.Context, name string) (*tag.Tag, error) {
	var t tag.Tag
	if err := m.col.FindOne(ctx, bson.M{"name": name}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (m *MongoRepo) GetByID(ctx context.Context, id string) (*tag.Tag, error) {
	var t tag.Tag
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (m *MongoRepo) Search(ctx context.Context, query string, limit int) ([]*tag.Tag, error) {
	filter := bson.M{"name": bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeTags(ctx, cur)
}

func (m *MongoRepo) List(ctx context.Context) ([]*tag.Tag, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeTags(ctx, cur)
}

func (m *MongoRepo) Exists(ctx context.Context, name string) (bool, error) {
	n, err := m.col.CountDocuments(ctx, bson.M{"name": name}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (m *MongoRepo) Update(ctx context.Context, id string, name, description *string) (*tag.Tag, error) {
	set := bson.M{"lastEditedAt": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if description != nil {
		set["description"] = *description
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t tag.Tag
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &t, nil
}

func (m *MongoRepo) Delete(ctx context.Context, name string) (bool, error) {
	res, err := m.col.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func decodeTags(ctx context.Context, cur *mongo.Cursor) ([]*tag.Tag, error) {
	out := []*tag.Tag{}
	for cur.Next(ctx) {
		var t tag.Tag
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, cur.Err()
}
