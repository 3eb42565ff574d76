// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package checkpoint

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
)

// mongoRecord mirrors fileRecord's shape for the MongoDB-backed store, so
// the two implementations commit and read semantically identical records.
type mongoRecord struct {
	ThreadID  string                 `bson:"thread_id"`
	Sequence  uint64                 `bson:"sequence"`
	StepName  string                 `bson:"step_name"`
	State     analysis.AnalysisState `bson:"state"`
	CreatedAt time.Time              `bson:"created_at"`
}

// MongoStore persists checkpoints in a MongoDB collection keyed by
// (thread_id, sequence). Connection pooling and database selection are the
// caller's responsibility — MongoStore only needs a ready-to-use
// *mongo.Collection.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore wraps a pre-connected collection as a checkpoint Store.
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

// Put inserts a new checkpoint document, one sequence number higher than
// the last committed document for threadID.
func (s *MongoStore) Put(ctx context.Context, threadID, stepName string, state analysis.AnalysisState) error {
	nextSeq := uint64(1)
	last, err := s.latestRecord(ctx, threadID)
	if err != nil && err != mongo.ErrNoDocuments {
		return err
	}
	if last != nil {
		nextSeq = last.Sequence + 1
	}

	record := mongoRecord{
		ThreadID:  threadID,
		Sequence:  nextSeq,
		StepName:  stepName,
		State:     state,
		CreatedAt: time.Now(),
	}

	if _, err := s.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("checkpoint: insert record for thread %s: %w", threadID, err)
	}
	return nil
}

// Latest returns the highest-sequence checkpoint committed for threadID.
func (s *MongoStore) Latest(ctx context.Context, threadID string) (string, analysis.AnalysisState, bool, error) {
	record, err := s.latestRecord(ctx, threadID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", analysis.AnalysisState{}, false, nil
		}
		return "", analysis.AnalysisState{}, false, err
	}
	return record.StepName, record.State, true, nil
}

func (s *MongoStore) latestRecord(ctx context.Context, threadID string) (*mongoRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "sequence", Value: -1}})

	var record mongoRecord
	err := s.collection.FindOne(ctx, bson.D{{Key: "thread_id", Value: threadID}}, opts).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("checkpoint: query latest record for thread %s: %w", threadID, err)
	}
	return &record, nil
}
