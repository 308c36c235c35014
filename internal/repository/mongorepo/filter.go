package mongorepo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

// field maps a query column onto its document field.
func field(column string) string {
	if column == "id" {
		return "_id"
	}
	return column
}

// renderFilter turns predicates into a filter document. Multiple predicates are
// combined with $and so that two conditions on one field never collide.
func renderFilter(preds []query.Predicate) bson.M {
	conds := make([]bson.M, 0, len(preds))
	for _, p := range preds {
		if c := renderPredicate(p); c != nil {
			conds = append(conds, c)
		}
	}
	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0]
	}
	return bson.M{"$and": conds}
}

func renderPredicate(p query.Predicate) bson.M {
	switch p.Kind {
	case query.Exact:
		return bson.M{field(p.Column): p.Value}
	case query.Contains:
		return bson.M{field(p.Column): containsRegex(p.Value)}
	case query.Range:
		bounds := bson.M{}
		if p.Min != nil {
			bounds["$gte"] = p.Min
		}
		if p.Max != nil {
			bounds["$lte"] = p.Max
		}
		if len(bounds) == 0 {
			return nil
		}
		return bson.M{field(p.Column): bounds}
	case query.SetMembership:
		// Equality against an array field matches any element.
		return bson.M{field(p.Column): p.Value}
	case query.CompoundOr:
		ors := make(bson.A, 0, len(p.Columns))
		for _, col := range p.Columns {
			ors = append(ors, bson.M{field(col): containsRegex(p.Value)})
		}
		return bson.M{"$or": ors}
	}
	return nil
}

func containsRegex(v any) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(fmt.Sprint(v)), Options: "i"}
}

func renderSort(orders []query.Order) bson.D {
	sort := make(bson.D, 0, len(orders))
	for _, o := range orders {
		dir := 1
		if o.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: field(o.Column), Value: dir})
	}
	return sort
}

func findOptions(q query.Query) *options.FindOptions {
	opts := options.Find().SetSort(renderSort(q.Order))
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return opts
}

// listPage counts the matching documents and decodes one page of them.
func listPage[T any](ctx context.Context, coll *mongo.Collection, q query.Query) ([]T, int64, error) {
	filter := renderFilter(q.Predicates)
	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", coll.Name(), err)
	}
	items := []T{}
	if count == 0 || int64(q.Offset) >= count {
		return items, count, nil
	}
	cursor, err := coll.Find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, 0, fmt.Errorf("listing %s: %w", coll.Name(), err)
	}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", coll.Name(), err)
	}
	return items, count, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var item T
	if err := coll.FindOne(ctx, filter).Decode(&item); err != nil {
		return nil, mapErr(err)
	}
	return &item, nil
}

// setByID applies $set to the document with the given id.
func setByID(ctx context.Context, coll *mongo.Collection, id int64, set bson.M) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id int64) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// incViews adds one to the views field and decodes the updated document.
func incViews[T any](ctx context.Context, coll *mongo.Collection, id int64) (*T, error) {
	var item T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": int64(1)}}, opts).Decode(&item)
	if err != nil {
		return nil, mapErr(err)
	}
	return &item, nil
}
