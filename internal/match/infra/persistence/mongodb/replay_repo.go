package mongodb

import (
	"context"
	"errors"

	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/infra/persistence/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	matchCollectionName = "match"
	entryCollectionName = "replay_entry"
)

type ReplayRepository struct {
	matches *mongo.Collection
	entries *mongo.Collection
}

func NewReplayRepository(db *mongo.Database) *ReplayRepository {
	return &ReplayRepository{
		matches: db.Collection(matchCollectionName),
		entries: db.Collection(entryCollectionName),
	}
}

// EnsureIndexes 建立 (match_id, seq) 唯一索引。
func (r *ReplayRepository) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.entries == nil {
		return errors.New("mongodb replay collection is nil")
	}
	_, err := r.entries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "match_id", Value: 1}, {Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *ReplayRepository) SaveMatch(ctx context.Context, rec *entity.MatchRecord) error {
	if rec == nil {
		return nil
	}
	if r == nil || r.matches == nil {
		return errors.New("mongodb match collection is nil")
	}
	doc, err := model.MatchToRow(rec)
	if err != nil {
		return err
	}
	_, err = r.matches.ReplaceOne(
		ctx,
		bson.M{"_id": doc.MatchID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *ReplayRepository) AppendEntries(ctx context.Context, batch *entity.ReplayBatch) error {
	if batch == nil || len(batch.Entries) == 0 {
		return nil
	}
	if r == nil || r.entries == nil {
		return errors.New("mongodb replay collection is nil")
	}
	writes := make([]mongo.WriteModel, 0, len(batch.Entries))
	for _, e := range batch.Entries {
		doc := model.EntryToRow(batch.MatchID, e)
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"match_id": doc.MatchID, "seq": doc.Seq}).
			SetUpdate(bson.M{"$setOnInsert": doc}).
			SetUpsert(true))
	}
	_, err := r.entries.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *ReplayRepository) LoadMatch(ctx context.Context, matchID string) (*entity.MatchRecord, error) {
	if r == nil || r.matches == nil {
		return nil, errors.New("mongodb match collection is nil")
	}
	var doc model.MatchRow
	err := r.matches.FindOne(ctx, bson.M{"_id": matchID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, entity.ErrMatchNotFound.WithData("match_id", matchID)
	}
	if err != nil {
		return nil, err
	}
	return model.RowToMatch(doc)
}

func (r *ReplayRepository) LoadEntries(ctx context.Context, matchID string) ([]entity.ReplayEntry, error) {
	if r == nil || r.entries == nil {
		return nil, errors.New("mongodb replay collection is nil")
	}
	cur, err := r.entries.Find(ctx, bson.M{"match_id": matchID}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []model.EntryRow
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.ReplayEntry, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.RowToEntry(doc))
	}
	return out, nil
}
