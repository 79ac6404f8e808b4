package types

import "strings"

// Path is a read-only snapshot of a walk through the graph: n+1 vertices
// joined by n edges. Edges[i] connects Vertices[i] and Vertices[i+1].
type Path struct {
	Vertices []*Vertex `json:"vertices"`
	Edges    []*Edge   `json:"edges"`
}

// SingleVertexPath returns the zero-length path standing at v.
func SingleVertexPath(v *Vertex) *Path {
	return &Path{Vertices: []*Vertex{v}}
}

// Length returns the number of edges in the path.
func (p *Path) Length() int {
	return len(p.Edges)
}

// StartVertex returns the first vertex of the path.
func (p *Path) StartVertex() *Vertex {
	if len(p.Vertices) == 0 {
		return nil
	}
	return p.Vertices[0]
}

// EndVertex returns the last vertex of the path.
func (p *Path) EndVertex() *Vertex {
	if len(p.Vertices) == 0 {
		return nil
	}
	return p.Vertices[len(p.Vertices)-1]
}

// LastEdge returns the edge leading to the end vertex, or nil for a
// zero-length path.
func (p *Path) LastEdge() *Edge {
	if len(p.Edges) == 0 {
		return nil
	}
	return p.Edges[len(p.Edges)-1]
}

// VertexIDs returns the ids of the vertices in walk order.
func (p *Path) VertexIDs() []string {
	ids := make([]string, len(p.Vertices))
	for i, v := range p.Vertices {
		ids[i] = v.ID
	}
	return ids
}

// EdgeIDs returns the ids of the edges in walk order.
func (p *Path) EdgeIDs() []string {
	ids := make([]string, len(p.Edges))
	for i, e := range p.Edges {
		ids[i] = e.ID
	}
	return ids
}

// ContainsVertex reports whether the vertex id occurs anywhere on the path.
func (p *Path) ContainsVertex(id string) bool {
	for _, v := range p.Vertices {
		if v.ID == id {
			return true
		}
	}
	return false
}

// String renders the path as (A)-[T]->(B)<-[U]-(C), with arrows pointing
// the way each edge is stored relative to the walk.
func (p *Path) String() string {
	var sb strings.Builder
	for i, v := range p.Vertices {
		if i > 0 {
			e := p.Edges[i-1]
			if e.StartID == p.Vertices[i-1].ID {
				sb.WriteString("-[" + e.Type + "]->")
			} else {
				sb.WriteString("<-[" + e.Type + "]-")
			}
		}
		sb.WriteString("(" + v.ID + ")")
	}
	return sb.String()
}
