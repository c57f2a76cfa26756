package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrportal/internal/platform/docstore"
)

const DefaultMissingField = "pan"

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidFieldName rejects anything that could be read as a query operator.
func ValidFieldName(field string) bool {
	return fieldNamePattern.MatchString(field)
}

// Documents runs the fixed aggregation pipelines against the document store.
type Documents struct {
	Docs *docstore.Store
}

func NewDocuments(docs *docstore.Store) *Documents {
	return &Documents{Docs: docs}
}

func missingFieldFilter(field string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{field: bson.M{"$exists": false}},
		bson.M{field: nil},
		bson.M{field: ""},
	}}
}

func (d *Documents) MissingIdentifier(ctx context.Context, field string) (MissingIdentifierResult, error) {
	if field == "" {
		field = DefaultMissingField
	}
	if !ValidFieldName(field) {
		return MissingIdentifierResult{}, fmt.Errorf("invalid field name %q", field)
	}
	cursor, err := d.Docs.Personnel().Find(ctx, missingFieldFilter(field),
		options.Find().SetProjection(bson.M{"name": 1}).SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return MissingIdentifierResult{}, err
	}
	var docs []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Name string             `bson:"name"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return MissingIdentifierResult{}, err
	}
	result := MissingIdentifierResult{Field: field, Records: make([]IdentifierGap, 0, len(docs))}
	for _, doc := range docs {
		name := doc.Name
		if name == "" {
			name = "N/A"
		}
		result.Records = append(result.Records, IdentifierGap{Name: name, ID: doc.ID.Hex()})
	}
	result.Count = len(result.Records)
	return result, nil
}

func countByDesc() bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}}
}

// qualificationPipeline counts qualifications either from the normalized collection or from
// whichever of the two embedded arrays a personnel document carries.
func qualificationPipeline(normalized bool) mongo.Pipeline {
	if normalized {
		return mongo.Pipeline{
			{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$qualification"}, {Key: "preserveNullAndEmptyArrays", Value: false}}}},
			{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$qualification"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
			countByDesc(),
		}
	}
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{{Key: "quals", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$qualification", "$qualifications"}}}}}}},
		{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$quals"}, {Key: "preserveNullAndEmptyArrays", Value: false}}}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$quals"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		countByDesc(),
	}
}

func groupCountPipeline(path string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$" + path}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		countByDesc(),
	}
}

func bloodGroupPipeline(withMembers bool) mongo.Pipeline {
	group := bson.D{{Key: "_id", Value: "$blood_group"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}
	if withMembers {
		group = append(group, bson.E{Key: "employee_ids", Value: bson.D{{Key: "$push", Value: "$employee_id"}}})
	}
	return mongo.Pipeline{
		{{Key: "$group", Value: group}},
		countByDesc(),
	}
}

func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QualificationFrequency prefers the normalized collection when it holds any documents.
func (d *Documents) QualificationFrequency(ctx context.Context) (QualificationFrequency, error) {
	normalized, err := d.Docs.CollectionPresent(ctx, docstore.CollectionQualifications)
	if err != nil {
		return QualificationFrequency{}, err
	}
	source, coll := SourcePersonnel, d.Docs.Personnel()
	if normalized {
		source, coll = SourceQualifications, d.Docs.Qualifications()
	}
	counts, err := aggregate[CountRow](ctx, coll, qualificationPipeline(normalized))
	if err != nil {
		return QualificationFrequency{}, err
	}
	return QualificationFrequency{Source: source, Counts: counts}, nil
}

func (d *Documents) CityDistribution(ctx context.Context) ([]CountRow, error) {
	return aggregate[CountRow](ctx, d.Docs.Personnel(), groupCountPipeline("residence.city"))
}

func (d *Documents) StateDistribution(ctx context.Context) ([]CountRow, error) {
	return aggregate[CountRow](ctx, d.Docs.Personnel(), groupCountPipeline("residence.state"))
}

func (d *Documents) GenderDistribution(ctx context.Context) (GenderStats, error) {
	coll := d.Docs.Personnel()
	total, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return GenderStats{}, err
	}
	male, err := coll.CountDocuments(ctx, bson.D{{Key: "gender", Value: "Male"}})
	if err != nil {
		return GenderStats{}, err
	}
	female, err := coll.CountDocuments(ctx, bson.D{{Key: "gender", Value: "Female"}})
	if err != nil {
		return GenderStats{}, err
	}
	return ComputeGenderStats(total, male, female), nil
}

func (d *Documents) BloodGroupDistribution(ctx context.Context, withMembers bool) ([]BloodGroupRow, error) {
	return aggregate[BloodGroupRow](ctx, d.Docs.Personnel(), bloodGroupPipeline(withMembers))
}

// EmployeeQualifications gathers one employee's qualifications and experience, falling back to
// the personnel document when the normalized collection has nothing for them. It returns nil when
// neither source knows the employee.
func (d *Documents) EmployeeQualifications(ctx context.Context, employeeID int64) (*EmployeeQualifications, error) {
	normalized, err := d.Docs.CollectionPresent(ctx, docstore.CollectionQualifications)
	if err != nil {
		return nil, err
	}
	if normalized {
		cursor, err := d.Docs.Qualifications().Find(ctx, bson.M{"employee_id": employeeID})
		if err != nil {
			return nil, err
		}
		var recs []struct {
			Name          string   `bson:"name"`
			Qualification []string `bson:"qualification"`
			Experience    []string `bson:"experience"`
		}
		if err := cursor.All(ctx, &recs); err != nil {
			return nil, err
		}
		if len(recs) > 0 {
			out := &EmployeeQualifications{
				EmployeeID:     employeeID,
				Name:           recs[0].Name,
				Source:         SourceQualifications,
				Qualifications: []string{},
				Experiences:    []string{},
			}
			for _, rec := range recs {
				out.Qualifications = append(out.Qualifications, rec.Qualification...)
				out.Experiences = append(out.Experiences, rec.Experience...)
			}
			return out, nil
		}
	}

	var doc struct {
		Name           string   `bson:"name"`
		Qualification  []string `bson:"qualification"`
		Qualifications []string `bson:"qualifications"`
		Experience     []string `bson:"experience"`
	}
	err = d.Docs.Personnel().FindOne(ctx, bson.M{"employee_id": employeeID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	quals := doc.Qualification
	if len(quals) == 0 {
		quals = doc.Qualifications
	}
	if quals == nil {
		quals = []string{}
	}
	exps := doc.Experience
	if exps == nil {
		exps = []string{}
	}
	return &EmployeeQualifications{
		EmployeeID:     employeeID,
		Name:           doc.Name,
		Source:         SourcePersonnel,
		Qualifications: quals,
		Experiences:    exps,
	}, nil
}

// ComputeGenderStats derives percentages of the total rounded to two decimals.
// An empty population yields zero percentages and the two never sum past 100.
func ComputeGenderStats(total, male, female int64) GenderStats {
	stats := GenderStats{Total: total, Male: male, Female: female}
	if total <= 0 {
		return stats
	}
	stats.MalePercent = round2(float64(male) / float64(total) * 100)
	stats.FemalePercent = round2(float64(female) / float64(total) * 100)
	if stats.MalePercent+stats.FemalePercent > 100+percentEpsilon {
		stats.FemalePercent = round2(100 - stats.MalePercent)
	}
	return stats
}

const percentEpsilon = 1e-9

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
