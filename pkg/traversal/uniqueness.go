package traversal

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/soundprediction/graphwalk/pkg/types"
)

type uniquenessScope uint8

const (
	scopeNone uniquenessScope = iota
	scopeGlobal
	scopePath
	scopeLevel
	scopeRecent
	scopeFirstEdge
)

// Uniqueness selects which revisits a traversal refuses. Node policies key
// on the vertex a branch stands at, relationship policies on the edge it
// was reached by.
type Uniqueness struct {
	scope  uniquenessScope
	byEdge bool
	recent int
}

var (
	// NoUniqueness admits every candidate. Only safe with an evaluator
	// that prunes.
	NoUniqueness = Uniqueness{scope: scopeNone}

	// NodeGlobal visits each vertex at most once per traversal.
	NodeGlobal = Uniqueness{scope: scopeGlobal}
	// RelationshipGlobal follows each edge at most once per traversal.
	RelationshipGlobal = Uniqueness{scope: scopeGlobal, byEdge: true}

	// NodePath refuses a vertex already on the branch's own path.
	NodePath = Uniqueness{scope: scopePath}
	// RelationshipPath refuses an edge already on the branch's own path.
	RelationshipPath = Uniqueness{scope: scopePath, byEdge: true}

	// NodeLevel visits each vertex at most once per depth.
	NodeLevel = Uniqueness{scope: scopeLevel}
	// RelationshipLevel follows each edge at most once per depth.
	RelationshipLevel = Uniqueness{scope: scopeLevel, byEdge: true}

	// FirstRelationship requires the edges leaving the start vertices to be
	// unique; deeper edges are unrestricted.
	FirstRelationship = Uniqueness{scope: scopeFirstEdge, byEdge: true}
)

// PathUnique is the conventional name for NodePath.
var PathUnique = NodePath

// NodeRecent refuses vertices among the n most recently visited.
func NodeRecent(n int) Uniqueness {
	return Uniqueness{scope: scopeRecent, recent: n}
}

// RelationshipRecent refuses edges among the n most recently followed.
func RelationshipRecent(n int) Uniqueness {
	return Uniqueness{scope: scopeRecent, byEdge: true, recent: n}
}

func (u Uniqueness) String() string {
	kind := "node"
	if u.byEdge {
		kind = "relationship"
	}
	switch u.scope {
	case scopeNone:
		return "none"
	case scopeGlobal:
		return kind + "-global"
	case scopePath:
		return kind + "-path"
	case scopeLevel:
		return kind + "-level"
	case scopeRecent:
		return kind + "-recent:" + strconv.Itoa(u.recent)
	case scopeFirstEdge:
		return "first-relationship"
	default:
		return "unknown"
	}
}

// ParseUniqueness parses the names produced by Uniqueness.String. "edge"
// is accepted for "relationship", "path" for "node-path", and recent
// policies take their size after a colon, as in "node-recent:100".
func ParseUniqueness(s string) (Uniqueness, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.Replace(name, "edge-", "relationship-", 1)

	if base, size, ok := strings.Cut(name, ":"); ok {
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 {
			return Uniqueness{}, fmt.Errorf("%w: bad recent size in %q", ErrInvalidConfiguration, s)
		}
		switch base {
		case "node-recent":
			return NodeRecent(n), nil
		case "relationship-recent":
			return RelationshipRecent(n), nil
		}
		return Uniqueness{}, fmt.Errorf("%w: unknown uniqueness %q", ErrInvalidConfiguration, s)
	}

	switch name {
	case "none":
		return NoUniqueness, nil
	case "", "node-global":
		return NodeGlobal, nil
	case "relationship-global":
		return RelationshipGlobal, nil
	case "path", "node-path":
		return NodePath, nil
	case "relationship-path":
		return RelationshipPath, nil
	case "node-level":
		return NodeLevel, nil
	case "relationship-level":
		return RelationshipLevel, nil
	case "first-relationship", "first-edge":
		return FirstRelationship, nil
	}
	return Uniqueness{}, fmt.Errorf("%w: unknown uniqueness %q", ErrInvalidConfiguration, s)
}

// uniquenessFilter is the per-execution record of one policy. Candidates
// are checked before their vertex is loaded, so check sees only the parent,
// the edge and the far vertex id.
type uniquenessFilter interface {
	checkFirst(root *Branch) bool
	check(parent *Branch, edge *types.Edge, vertexID string) bool
	record(b *Branch)
}

func (u Uniqueness) newFilter() (uniquenessFilter, error) {
	switch u.scope {
	case scopeNone:
		return noFilter{}, nil
	case scopeGlobal:
		return &globalFilter{byEdge: u.byEdge, seen: make(map[string]struct{})}, nil
	case scopeFirstEdge:
		return &globalFilter{byEdge: true, firstOnly: true, seen: make(map[string]struct{})}, nil
	case scopePath:
		return pathFilter{byEdge: u.byEdge}, nil
	case scopeLevel:
		return &levelFilter{byEdge: u.byEdge, levels: make(map[int]map[string]struct{})}, nil
	case scopeRecent:
		if u.recent < 1 {
			return nil, fmt.Errorf("%w: recent uniqueness needs a positive size, got %d", ErrInvalidConfiguration, u.recent)
		}
		cache, err := lru.New[string, struct{}](u.recent)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
		return &recentFilter{byEdge: u.byEdge, cache: cache}, nil
	}
	return nil, fmt.Errorf("%w: unknown uniqueness %d", ErrInvalidConfiguration, u.scope)
}

// key returns the identity a policy records for a branch: the vertex id,
// or the incoming edge id for relationship policies. Roots have no edge
// and yield "" under relationship policies.
func key(byEdge bool, edge *types.Edge, vertexID string) string {
	if !byEdge {
		return vertexID
	}
	if edge == nil {
		return ""
	}
	return edge.ID
}

type noFilter struct{}

func (noFilter) checkFirst(*Branch) bool                 { return true }
func (noFilter) check(*Branch, *types.Edge, string) bool { return true }
func (noFilter) record(*Branch)                          {}

type globalFilter struct {
	byEdge    bool
	firstOnly bool
	seen      map[string]struct{}
}

func (f *globalFilter) checkFirst(root *Branch) bool {
	return f.check(nil, nil, root.Vertex().ID)
}

func (f *globalFilter) check(parent *Branch, edge *types.Edge, vertexID string) bool {
	if f.firstOnly && (parent == nil || parent.Depth() > 0) {
		return true
	}
	k := key(f.byEdge, edge, vertexID)
	if k == "" {
		return true
	}
	_, seen := f.seen[k]
	return !seen
}

func (f *globalFilter) record(b *Branch) {
	if f.firstOnly && b.Depth() != 1 {
		return
	}
	if k := key(f.byEdge, b.Edge(), b.Vertex().ID); k != "" {
		f.seen[k] = struct{}{}
	}
}

// pathFilter keeps no record: the branch's ancestry is the record.
type pathFilter struct {
	byEdge bool
}

func (pathFilter) checkFirst(*Branch) bool { return true }

func (f pathFilter) check(parent *Branch, edge *types.Edge, vertexID string) bool {
	for b := parent; b != nil; b = b.Parent() {
		if f.byEdge {
			if b.Edge() != nil && b.Edge().ID == edge.ID {
				return false
			}
		} else if b.Vertex().ID == vertexID {
			return false
		}
	}
	return true
}

func (pathFilter) record(*Branch) {}

type levelFilter struct {
	byEdge bool
	levels map[int]map[string]struct{}
}

func (f *levelFilter) checkFirst(root *Branch) bool {
	return f.seenAt(0, key(f.byEdge, nil, root.Vertex().ID))
}

func (f *levelFilter) check(parent *Branch, edge *types.Edge, vertexID string) bool {
	return f.seenAt(parent.Depth()+1, key(f.byEdge, edge, vertexID))
}

func (f *levelFilter) seenAt(depth int, k string) bool {
	if k == "" {
		return true
	}
	_, seen := f.levels[depth][k]
	return !seen
}

func (f *levelFilter) record(b *Branch) {
	k := key(f.byEdge, b.Edge(), b.Vertex().ID)
	if k == "" {
		return
	}
	level, ok := f.levels[b.Depth()]
	if !ok {
		level = make(map[string]struct{})
		f.levels[b.Depth()] = level
	}
	level[k] = struct{}{}
}

type recentFilter struct {
	byEdge bool
	cache  *lru.Cache[string, struct{}]
}

func (f *recentFilter) checkFirst(root *Branch) bool {
	return !f.cache.Contains(key(f.byEdge, nil, root.Vertex().ID))
}

func (f *recentFilter) check(parent *Branch, edge *types.Edge, vertexID string) bool {
	return !f.cache.Contains(key(f.byEdge, edge, vertexID))
}

func (f *recentFilter) record(b *Branch) {
	if k := key(f.byEdge, b.Edge(), b.Vertex().ID); k != "" {
		f.cache.Add(k, struct{}{})
	}
}
