package report

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BartekS5/ods14/pkg/logger"
)

// MongoArchive upserts one document per result row into a collection,
// keyed by run id, report name and row number.
type MongoArchive struct {
	Coll *mongo.Collection
	Now  func() time.Time
}

// NewMongoArchive returns an archive writing to db.collection.
func NewMongoArchive(client *mongo.Client, db, collection string) *MongoArchive {
	return &MongoArchive{Coll: client.Database(db).Collection(collection), Now: time.Now}
}

// Documents flattens results into archive documents.
func Documents(runID string, at time.Time, results []*Result) []bson.M {
	var docs []bson.M
	for _, res := range results {
		for i, row := range res.Rows {
			values := bson.M{}
			for j, col := range res.Columns {
				if j < len(row) {
					values[col] = row[j]
				}
			}
			docs = append(docs, bson.M{
				"run_id":     runID,
				"report":     res.Name,
				"row":        i,
				"values":     values,
				"created_at": at,
			})
		}
	}
	return docs
}

// Archive implements Archiver.
func (a *MongoArchive) Archive(ctx context.Context, runID string, results []*Result) error {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	docs := Documents(runID, now().UTC(), results)
	if len(docs) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		filter := bson.M{"run_id": doc["run_id"], "report": doc["report"], "row": doc["row"]}
		writes = append(writes, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(bson.M{"$set": doc}).SetUpsert(true))
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := a.Coll.BulkWrite(ctx, writes)
	if err != nil {
		return err
	}
	logger.Infof("Mongo BulkWrite: Match %d, Mod %d, Upsert %d", res.MatchedCount, res.ModifiedCount, res.UpsertedCount)
	return nil
}
