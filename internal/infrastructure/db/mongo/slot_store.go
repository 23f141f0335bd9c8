package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crazylearners/portal/internal/core/ports"
)

const collectionSlots = "slots"

// SlotStore keeps each named slot as one document keyed by its name.
type SlotStore struct {
	col *mongo.Collection
}

var _ ports.SlotStore = (*SlotStore)(nil)

func NewSlotStore(db *mongo.Database) *SlotStore {
	return &SlotStore{col: db.Collection(collectionSlots)}
}

type slotDocument struct {
	Name      string `bson:"_id"`
	Value     []byte `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (s *SlotStore) Get(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc slotDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrSlotNotFound
		}
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return doc.Value, nil
}

// Set upserts the slot, overwriting any previous value.
func (s *SlotStore) Set(ctx context.Context, name string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"value":      value,
		"updated_at": time.Now().UTC().Unix(),
	}}
	if _, err := s.col.UpdateOne(ctx, bson.M{"_id": name}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	return nil
}

func (s *SlotStore) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

func (s *SlotStore) Ping(ctx context.Context) error {
	return s.col.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
