package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// IDProperty is the property holding the stable id of vertices and edges in
// Neo4j. Elements without it fall back to their element id.
const IDProperty = "uuid"

// Neo4jGraph is a read-only GraphAccessor over a Neo4j database.
type Neo4jGraph struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jGraph creates a Neo4j accessor. No connection is made until the
// first query.
func NewNeo4jGraph(uri, username, password, database string) (*Neo4jGraph, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jGraph{
		client:   client,
		database: database,
	}, nil
}

// Provider returns GraphProviderNeo4j.
func (n *Neo4jGraph) Provider() GraphProvider {
	return GraphProviderNeo4j
}

// VerifyConnectivity checks that the database is reachable.
func (n *Neo4jGraph) VerifyConnectivity(ctx context.Context) error {
	return n.client.VerifyConnectivity(ctx)
}

// Close releases the driver.
func (n *Neo4jGraph) Close() error {
	return n.client.Close(context.Background())
}

// GetVertex retrieves a vertex by its uuid property.
func (n *Neo4jGraph) GetVertex(ctx context.Context, id string) (*types.Vertex, error) {
	records, err := n.read(ctx, `
		MATCH (n {uuid: $id})
		RETURN n
		LIMIT 1
	`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrStaleVertex, id)
	}

	value, _ := records[0].Get("n")
	node, err := MustDBNode(value, "n")
	if err != nil {
		return nil, err
	}
	return vertexFromDBNode(node), nil
}

// GetEdges lists the relationships of vertex in direction dir.
func (n *Neo4jGraph) GetEdges(ctx context.Context, vertex *types.Vertex, dir types.Direction, edgeTypes ...string) ([]*types.Edge, error) {
	pattern := "(n {uuid: $id})-[r]->()"
	switch dir {
	case types.Incoming:
		pattern = "(n {uuid: $id})<-[r]-()"
	case types.Both:
		pattern = "(n {uuid: $id})-[r]-()"
	}

	query := fmt.Sprintf(`
		MATCH (n {uuid: $id})
		OPTIONAL MATCH %s
		WHERE size($types) = 0 OR type(r) IN $types
		RETURN n.uuid AS vertex, r,
		       coalesce(startNode(r).uuid, elementId(startNode(r))) AS start_id,
		       coalesce(endNode(r).uuid, elementId(endNode(r))) AS end_id
		ORDER BY elementId(r)
	`, pattern)

	if edgeTypes == nil {
		edgeTypes = []string{}
	}
	records, err := n.read(ctx, query, map[string]any{
		"id":    vertex.ID,
		"types": edgeTypes,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrStaleVertex, vertex.ID)
	}

	seen := make(map[string]struct{}, len(records))
	edges := make([]*types.Edge, 0, len(records))
	for _, record := range records {
		value, _ := record.Get("r")
		if value == nil {
			// vertex without matching relationships
			continue
		}
		rel, err := MustDBRelationship(value, "r")
		if err != nil {
			return nil, err
		}
		startValue, _ := record.Get("start_id")
		endValue, _ := record.Get("end_id")
		startID, _ := AsString(startValue)
		endID, _ := AsString(endValue)

		e := edgeFromDBRelationship(rel, startID, endID)
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		edges = append(edges, e)
	}
	return edges, nil
}

func (n *Neo4jGraph) read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: n.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j read failed: %w", err)
	}

	records, ok := result.([]*neo4j.Record)
	if !ok {
		return nil, NewTypeConversionError("[]*neo4j.Record", fmt.Sprintf("%T", result), "")
	}
	return records, nil
}

func vertexFromDBNode(node dbtype.Node) *types.Vertex {
	props := make(map[string]any, len(node.Props))
	for k, v := range node.Props {
		props[k] = v
	}

	id, ok := AsString(props[IDProperty])
	if !ok || id == "" {
		id = node.ElementId
	}
	delete(props, IDProperty)

	return &types.Vertex{
		ID:         id,
		Labels:     append([]string(nil), node.Labels...),
		Properties: props,
	}
}

func edgeFromDBRelationship(rel dbtype.Relationship, startID, endID string) *types.Edge {
	props := make(map[string]any, len(rel.Props))
	for k, v := range rel.Props {
		props[k] = v
	}

	id, ok := AsString(props[IDProperty])
	if !ok || id == "" {
		id = rel.ElementId
	}
	delete(props, IDProperty)

	if startID == "" {
		startID = rel.StartElementId
	}
	if endID == "" {
		endID = rel.EndElementId
	}

	return &types.Edge{
		ID:         id,
		Type:       rel.Type,
		StartID:    startID,
		EndID:      endID,
		Properties: props,
	}
}

var _ GraphAccessor = (*Neo4jGraph)(nil)
