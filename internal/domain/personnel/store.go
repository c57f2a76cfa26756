package personnel

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrportal/internal/platform/docstore"
)

type Store struct {
	Docs *docstore.Store
}

func NewStore(docs *docstore.Store) *Store {
	return &Store{Docs: docs}
}

func (s *Store) Create(ctx context.Context, doc Document) (*Document, error) {
	doc.ID = primitive.NilObjectID
	res, err := s.Docs.Personnel().InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return &doc, nil
}

func (s *Store) Get(ctx context.Context, hexID string) (*Document, error) {
	id, err := ParseID(hexID)
	if err != nil {
		return nil, err
	}
	var doc Document
	err = s.Docs.Personnel().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Document, error) {
	query := bson.M{}
	if filter.EmployeeID != nil {
		query["employee_id"] = *filter.EmployeeID
	}
	cursor, err := s.Docs.Personnel().Find(ctx, query, options.Find().SetSort(bson.D{{Key: "employee_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces every mutable field of the document.
func (s *Store) Update(ctx context.Context, hexID string, doc Document) (*Document, error) {
	id, err := ParseID(hexID)
	if err != nil {
		return nil, err
	}
	doc.ID = id
	res, err := s.Docs.Personnel().ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *Store) Delete(ctx context.Context, hexID string) error {
	id, err := ParseID(hexID)
	if err != nil {
		return err
	}
	res, err := s.Docs.Personnel().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpsertQualifications(ctx context.Context, employeeID int64, rec QualificationRecord) (*QualificationRecord, error) {
	rec.ID = primitive.NilObjectID
	rec.EmployeeID = employeeID
	rec.Qualification = CleanList(rec.Qualification)
	rec.Experience = CleanList(rec.Experience)
	_, err := s.Docs.Qualifications().ReplaceOne(ctx,
		bson.M{"employee_id": employeeID},
		rec,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) GetQualifications(ctx context.Context, employeeID int64) (*QualificationRecord, error) {
	var rec QualificationRecord
	err := s.Docs.Qualifications().FindOne(ctx, bson.M{"employee_id": employeeID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ReplaceAll drops the personnel collection and loads docs in its place.
func (s *Store) ReplaceAll(ctx context.Context, docs []Document) (int, error) {
	if err := s.Docs.Personnel().Drop(ctx); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	items := make([]any, 0, len(docs))
	for _, doc := range docs {
		doc.ID = primitive.NilObjectID
		items = append(items, doc)
	}
	res, err := s.Docs.Personnel().InsertMany(ctx, items)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}
