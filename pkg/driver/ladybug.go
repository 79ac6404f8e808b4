//go:build cgo

package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	ladybug "github.com/LadybugDB/go-ladybug"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// LadybugSchemaQueries defines the generic property graph schema. Ladybug
// requires explicit tables, so labels and properties are stored as columns
// on a single vertex table and a single edge table.
const LadybugSchemaQueries = `
    CREATE NODE TABLE IF NOT EXISTS Vertex (
        id STRING PRIMARY KEY,
        labels STRING[],
        properties STRING
    );
    CREATE REL TABLE IF NOT EXISTS Edge (
        FROM Vertex TO Vertex,
        id STRING,
        type STRING,
        properties STRING
    );
`

// LadybugGraph stores a property graph in an embedded Ladybug database.
type LadybugGraph struct {
	mu     sync.Mutex
	db     *ladybug.Database
	client *ladybug.Connection
	dbPath string
}

// NewLadybugGraph opens (or creates) a Ladybug database at dbPath and
// ensures the schema exists. An empty path opens an in-memory database.
func NewLadybugGraph(dbPath string) (*LadybugGraph, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	systemConfig := ladybug.SystemConfig{
		BufferPoolSize:    256 * 1024 * 1024,
		MaxNumThreads:     1,
		EnableCompression: true,
		ReadOnly:          false,
		MaxDbSize:         1 << 40,
	}

	database, err := ladybug.OpenDatabase(dbPath, systemConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open ladybug database: %w", err)
	}

	client, err := ladybug.OpenConnection(database)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open ladybug connection: %w", err)
	}

	schema, err := client.Query(LadybugSchemaQueries)
	if err != nil {
		client.Close()
		database.Close()
		return nil, fmt.Errorf("failed to create ladybug schema: %w", err)
	}
	schema.Close()

	return &LadybugGraph{db: database, client: client, dbPath: dbPath}, nil
}

// Provider returns GraphProviderLadybug.
func (g *LadybugGraph) Provider() GraphProvider {
	return GraphProviderLadybug
}

// Close releases the connection and database.
func (g *LadybugGraph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		g.client.Close()
		g.client = nil
	}
	if g.db != nil {
		g.db.Close()
		g.db = nil
	}
	return nil
}

// GetVertex retrieves a vertex by id.
func (g *LadybugGraph) GetVertex(ctx context.Context, id string) (*types.Vertex, error) {
	rows, err := g.execute(`
		MATCH (v:Vertex)
		WHERE v.id = $id
		RETURN v.id AS id, v.labels AS labels, v.properties AS properties
	`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrStaleVertex, id)
	}

	row := rows[0]
	labels, _ := AsStringSlice(row["labels"])
	props, ok := AsProperties(row["properties"])
	if !ok {
		return nil, NewTypeConversionError("properties", fmt.Sprintf("%T", row["properties"]), "properties")
	}
	return &types.Vertex{ID: id, Labels: labels, Properties: props}, nil
}

// GetEdges lists the edges of vertex in direction dir.
func (g *LadybugGraph) GetEdges(ctx context.Context, vertex *types.Vertex, dir types.Direction, edgeTypes ...string) ([]*types.Edge, error) {
	if _, err := g.GetVertex(ctx, vertex.ID); err != nil {
		return nil, err
	}

	var queries []string
	if dir == types.Outgoing || dir == types.Both {
		queries = append(queries, `
			MATCH (a:Vertex)-[e:Edge]->(b:Vertex)
			WHERE a.id = $id
			RETURN e.id AS id, e.type AS type, a.id AS start_id, b.id AS end_id, e.properties AS properties
			ORDER BY e.id
		`)
	}
	if dir == types.Incoming || dir == types.Both {
		queries = append(queries, `
			MATCH (a:Vertex)<-[e:Edge]-(b:Vertex)
			WHERE a.id = $id
			RETURN e.id AS id, e.type AS type, b.id AS start_id, a.id AS end_id, e.properties AS properties
			ORDER BY e.id
		`)
	}

	seen := make(map[string]struct{})
	var edges []*types.Edge
	for _, query := range queries {
		rows, err := g.execute(query, map[string]any{"id": vertex.ID})
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			e, err := edgeFromRow(row)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[e.ID]; dup || !e.IsType(edgeTypes...) {
				continue
			}
			seen[e.ID] = struct{}{}
			edges = append(edges, e)
		}
	}
	return edges, nil
}

// PutVertex creates or replaces a vertex.
func (g *LadybugGraph) PutVertex(ctx context.Context, v *types.Vertex) error {
	if err := v.Validate(); err != nil {
		return err
	}
	props, err := encodeProperties(v.Properties)
	if err != nil {
		return err
	}
	labels := v.Labels
	if labels == nil {
		labels = []string{}
	}

	_, err = g.execute(`
		MERGE (v:Vertex {id: $id})
		SET v.labels = $labels, v.properties = $properties
	`, map[string]any{"id": v.ID, "labels": labels, "properties": props})
	return err
}

// PutEdge creates or replaces an edge between two existing vertices.
func (g *LadybugGraph) PutEdge(ctx context.Context, e *types.Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	for _, id := range []string{e.StartID, e.EndID} {
		if _, err := g.GetVertex(ctx, id); err != nil {
			return err
		}
	}
	props, err := encodeProperties(e.Properties)
	if err != nil {
		return err
	}

	if _, err := g.execute(`
		MATCH ()-[e:Edge]->()
		WHERE e.id = $id
		DELETE e
	`, map[string]any{"id": e.ID}); err != nil {
		return err
	}

	_, err = g.execute(`
		MATCH (a:Vertex), (b:Vertex)
		WHERE a.id = $start_id AND b.id = $end_id
		CREATE (a)-[:Edge {id: $id, type: $type, properties: $properties}]->(b)
	`, map[string]any{
		"id":         e.ID,
		"type":       e.Type,
		"start_id":   e.StartID,
		"end_id":     e.EndID,
		"properties": props,
	})
	return err
}

// DeleteVertex removes a vertex and its incident edges.
func (g *LadybugGraph) DeleteVertex(ctx context.Context, id string) error {
	if _, err := g.GetVertex(ctx, id); err != nil {
		return err
	}
	_, err := g.execute(`
		MATCH (v:Vertex)
		WHERE v.id = $id
		DETACH DELETE v
	`, map[string]any{"id": id})
	return err
}

// execute runs a query and returns its rows keyed by column name.
func (g *LadybugGraph) execute(query string, params map[string]any) ([]map[string]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		return nil, fmt.Errorf("ladybug graph is closed")
	}

	var results *ladybug.QueryResult
	var err error
	if len(params) > 0 {
		preparedStatement, err := g.client.Prepare(query)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare ladybug query: %w", err)
		}
		results, err = g.client.Execute(preparedStatement, params)
		if err != nil {
			return nil, fmt.Errorf("failed to execute ladybug query: %w", err)
		}
	} else {
		results, err = g.client.Query(query)
		if err != nil {
			return nil, fmt.Errorf("failed to execute ladybug query: %w", err)
		}
	}
	defer results.Close()

	columnNames := results.GetColumnNames()

	var rows []map[string]any
	for results.HasNext() {
		tuple, err := results.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read ladybug row: %w", err)
		}
		values, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("failed to decode ladybug row: %w", err)
		}

		row := make(map[string]any, len(values))
		for i, value := range values {
			if i < len(columnNames) {
				row[columnNames[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func edgeFromRow(row map[string]any) (*types.Edge, error) {
	id, err := MustString(row["id"], "id")
	if err != nil {
		return nil, err
	}
	edgeType, err := MustString(row["type"], "type")
	if err != nil {
		return nil, err
	}
	startID, err := MustString(row["start_id"], "start_id")
	if err != nil {
		return nil, err
	}
	endID, err := MustString(row["end_id"], "end_id")
	if err != nil {
		return nil, err
	}
	props, ok := AsProperties(row["properties"])
	if !ok {
		return nil, NewTypeConversionError("properties", fmt.Sprintf("%T", row["properties"]), "properties")
	}

	return &types.Edge{
		ID:         id,
		Type:       edgeType,
		StartID:    startID,
		EndID:      endID,
		Properties: props,
	}, nil
}

func encodeProperties(props map[string]any) (string, error) {
	if len(props) == 0 {
		return "", nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("failed to encode properties: %w", err)
	}
	return string(data), nil
}

var _ Graph = (*LadybugGraph)(nil)
