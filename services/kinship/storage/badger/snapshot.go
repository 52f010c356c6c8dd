// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/kinship/services/kinship/graph"
)

// Key prefixes for snapshot records. Node and edge keys carry a snapshot
// generation ("node:{gen}:{id}", "edge:{gen}:{seq}") so a new snapshot is
// written beside the previous one and only becomes current when the meta
// record is committed.
const (
	nodePrefix = "node:"
	edgePrefix = "edge:"
	metaKey    = "meta:snapshot"
)

// SnapshotMeta describes a stored snapshot.
type SnapshotMeta struct {
	Generation   uint64 `json:"generation"`
	SavedAtMilli int64  `json:"saved_at_milli"`
	NodeCount    int    `json:"node_count"`
	EdgeCount    int    `json:"edge_count"`
}

// SnapshotStore persists whole graphs in a BadgerDB instance.
//
// Thread Safety:
//
//	SnapshotStore is safe for concurrent use; BadgerDB transactions
//	provide isolation. Save publishes the new snapshot by committing the
//	meta record, so a concurrent Load observes either the previous or the
//	new snapshot, never a mix.
type SnapshotStore struct {
	db *badger.DB
}

// NewSnapshotStore wraps an open BadgerDB instance.
func NewSnapshotStore(db *badger.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// genPrefix returns the key prefix for one record kind of one generation.
func genPrefix(prefix string, gen uint64) []byte {
	return []byte(fmt.Sprintf("%s%d:", prefix, gen))
}

// Save writes the full node and edge set of g as the current snapshot.
//
// Description:
//
//	Streams every node and edge as a JSON record into the next snapshot
//	generation, then commits the meta record to make that generation
//	current and drops the previous one. The previous snapshot stays
//	loadable until the meta commit, so a Save that fails partway leaves
//	it intact. Edge keys carry the insertion sequence, so restore
//	preserves edge ordering.
//
// Outputs:
//
//	error - Non-nil on serialization or storage failure.
func (s *SnapshotStore) Save(g *graph.Graph) error {
	nodes := g.Nodes()
	edges := g.Edges()

	prev, hasPrev, err := s.Meta()
	if err != nil {
		return fmt.Errorf("read snapshot meta: %w", err)
	}
	gen := prev.Generation + 1

	// Clear debris from an earlier Save that failed before its meta commit.
	if err := s.db.DropPrefix(genPrefix(nodePrefix, gen), genPrefix(edgePrefix, gen)); err != nil {
		return fmt.Errorf("clear snapshot generation %d: %w", gen, err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, n := range nodes {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal node %s: %w", n.ID, err)
		}
		key := append(genPrefix(nodePrefix, gen), n.ID...)
		if err := wb.Set(key, data); err != nil {
			return fmt.Errorf("write node %s: %w", n.ID, err)
		}
	}
	for i, e := range edges {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal edge %d: %w", i, err)
		}
		key := []byte(fmt.Sprintf("%s%d:%012d", edgePrefix, gen, i))
		if err := wb.Set(key, data); err != nil {
			return fmt.Errorf("write edge %d: %w", i, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}

	// Commit point: readers switch to the new generation here.
	meta := SnapshotMeta{
		Generation:   gen,
		SavedAtMilli: time.Now().UnixMilli(),
		NodeCount:    len(nodes),
		EdgeCount:    len(edges),
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal snapshot meta: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(metaKey), metaData)
	}); err != nil {
		return fmt.Errorf("commit snapshot meta: %w", err)
	}

	if hasPrev {
		if err := s.db.DropPrefix(genPrefix(nodePrefix, prev.Generation), genPrefix(edgePrefix, prev.Generation)); err != nil {
			return fmt.Errorf("drop previous snapshot: %w", err)
		}
	}
	return nil
}

// Load rebuilds a graph from the current snapshot.
//
// Description:
//
//	Reads every node record of the generation the meta record points at,
//	then replays that generation's edge records in key order. Node IDs
//	are preserved so edges reconnect to the same nodes.
//
// Inputs:
//
//	opts - Graph options applied to the rebuilt graph.
//
// Outputs:
//
//	*graph.Graph - The restored graph. Empty if no snapshot is stored.
//	error - Non-nil on storage or decode failure, or if an edge record
//	references a missing node (corrupt snapshot).
func (s *SnapshotStore) Load(opts ...graph.Option) (*graph.Graph, error) {
	g := graph.New(opts...)

	meta, ok, err := s.Meta()
	if err != nil {
		return nil, fmt.Errorf("read snapshot meta: %w", err)
	}
	if !ok {
		return g, nil
	}
	nodeGen := genPrefix(nodePrefix, meta.Generation)
	edgeGen := genPrefix(edgePrefix, meta.Generation)

	err = s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		// Nodes first so edges always find their endpoints.
		for it.Seek(nodeGen); it.ValidForPrefix(nodeGen); it.Next() {
			var n graph.Node
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			}); err != nil {
				return fmt.Errorf("decode node record %s: %w", it.Item().Key(), err)
			}
			if err := g.PutNode(n.ID, n.Label, n.Properties); err != nil {
				return fmt.Errorf("restore node %s: %w", n.ID, err)
			}
		}

		for it.Seek(edgeGen); it.ValidForPrefix(edgeGen); it.Next() {
			var e graph.Edge
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("decode edge record %s: %w", it.Item().Key(), err)
			}
			if err := g.AddEdge(e.FromID, e.ToID, e.Type, e.Properties); err != nil {
				return fmt.Errorf("restore edge %s->%s: %w", e.FromID, e.ToID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Meta returns metadata about the stored snapshot, or false if none exists.
func (s *SnapshotStore) Meta() (SnapshotMeta, bool, error) {
	var meta SnapshotMeta
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return SnapshotMeta{}, false, nil
	}
	if err != nil {
		return SnapshotMeta{}, false, err
	}
	return meta, true, nil
}
