package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// Key layout:
//
//	v/<vertex id>               -> JSON vertex
//	e/<edge id>                 -> JSON edge
//	o/<vertex id>\x00<edge id>  -> empty (outgoing index)
//	i/<vertex id>\x00<edge id>  -> empty (incoming index)
const keySep = "\x00"

var (
	vertexPrefix = []byte("v/")
	edgePrefix   = []byte("e/")
	outPrefix    = []byte("o/")
	inPrefix     = []byte("i/")
)

// BadgerGraph stores a property graph in an embedded badger database.
// Edges of a vertex are returned in edge id order.
type BadgerGraph struct {
	db *badger.DB
}

// NewBadgerGraph opens (or creates) a badger graph at path. An empty path
// opens an in-memory store.
func NewBadgerGraph(path string) (*BadgerGraph, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger graph: %w", err)
	}
	return &BadgerGraph{db: db}, nil
}

// Provider returns GraphProviderBadger.
func (g *BadgerGraph) Provider() GraphProvider {
	return GraphProviderBadger
}

// Close releases the underlying database.
func (g *BadgerGraph) Close() error {
	return g.db.Close()
}

// GetVertex retrieves a vertex by id.
func (g *BadgerGraph) GetVertex(ctx context.Context, id string) (*types.Vertex, error) {
	var v types.Vertex
	err := g.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, vertexKey(id), &v)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrStaleVertex, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vertex %s: %w", id, err)
	}
	return &v, nil
}

// GetEdges lists the edges of vertex in direction dir.
func (g *BadgerGraph) GetEdges(ctx context.Context, vertex *types.Vertex, dir types.Direction, edgeTypes ...string) ([]*types.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []*types.Edge
	err := g.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(vertexKey(vertex.ID)); err != nil {
			return err
		}

		var edgeIDs []string
		if dir == types.Outgoing || dir == types.Both {
			edgeIDs = append(edgeIDs, indexedEdgeIDs(txn, outPrefix, vertex.ID)...)
		}
		if dir == types.Incoming || dir == types.Both {
			for _, id := range indexedEdgeIDs(txn, inPrefix, vertex.ID) {
				// self loops are already listed as outgoing
				if dir == types.Both && containsString(edgeIDs, id) {
					continue
				}
				edgeIDs = append(edgeIDs, id)
			}
		}

		for _, id := range edgeIDs {
			var e types.Edge
			if err := getJSON(txn, edgeKey(id), &e); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: %s", types.ErrStaleEdge, id)
				}
				return err
			}
			if e.IsType(edgeTypes...) {
				result = append(result, &e)
			}
		}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrStaleVertex, vertex.ID)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PutVertex creates or replaces a vertex.
func (g *BadgerGraph) PutVertex(ctx context.Context, v *types.Vertex) error {
	if err := v.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode vertex %s: %w", v.ID, err)
	}

	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Set(vertexKey(v.ID), data)
	})
}

// PutEdge creates or replaces an edge between two existing vertices.
func (g *BadgerGraph) PutEdge(ctx context.Context, e *types.Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode edge %s: %w", e.ID, err)
	}

	return g.db.Update(func(txn *badger.Txn) error {
		for _, id := range []string{e.StartID, e.EndID} {
			if _, err := txn.Get(vertexKey(id)); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: %s", types.ErrStaleVertex, id)
				}
				return err
			}
		}

		var old types.Edge
		switch err := getJSON(txn, edgeKey(e.ID), &old); {
		case err == nil:
			if err := deleteEdgeIndex(txn, &old); err != nil {
				return err
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if err := txn.Set(edgeKey(e.ID), data); err != nil {
			return err
		}
		if err := txn.Set(indexKey(outPrefix, e.StartID, e.ID), nil); err != nil {
			return err
		}
		return txn.Set(indexKey(inPrefix, e.EndID, e.ID), nil)
	})
}

// DeleteVertex removes a vertex and its incident edges.
func (g *BadgerGraph) DeleteVertex(ctx context.Context, id string) error {
	return g.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(vertexKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", types.ErrStaleVertex, id)
			}
			return err
		}

		edgeIDs := indexedEdgeIDs(txn, outPrefix, id)
		edgeIDs = append(edgeIDs, indexedEdgeIDs(txn, inPrefix, id)...)
		for _, edgeID := range edgeIDs {
			var e types.Edge
			if err := getJSON(txn, edgeKey(edgeID), &e); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			if err := deleteEdgeIndex(txn, &e); err != nil {
				return err
			}
			if err := txn.Delete(edgeKey(edgeID)); err != nil {
				return err
			}
		}
		return txn.Delete(vertexKey(id))
	})
}

func vertexKey(id string) []byte {
	return append(append([]byte(nil), vertexPrefix...), id...)
}

func edgeKey(id string) []byte {
	return append(append([]byte(nil), edgePrefix...), id...)
}

func indexKey(prefix []byte, vertexID, edgeID string) []byte {
	key := append(append([]byte(nil), prefix...), vertexID...)
	key = append(key, keySep...)
	return append(key, edgeID...)
}

func getJSON(txn *badger.Txn, key []byte, out any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func deleteEdgeIndex(txn *badger.Txn, e *types.Edge) error {
	if err := txn.Delete(indexKey(outPrefix, e.StartID, e.ID)); err != nil {
		return err
	}
	return txn.Delete(indexKey(inPrefix, e.EndID, e.ID))
}

// indexedEdgeIDs scans one adjacency index of vertexID.
func indexedEdgeIDs(txn *badger.Txn, prefix []byte, vertexID string) []string {
	scan := indexKey(prefix, vertexID, "")

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = scan
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(scan); it.ValidForPrefix(scan); it.Next() {
		key := it.Item().Key()
		ids = append(ids, string(bytes.TrimPrefix(key, scan)))
	}
	return ids
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

var _ Graph = (*BadgerGraph)(nil)
