package rules

import (
	"encoding/json"
	"fmt"

	"github.com/kamusis/cjval/internal/cityjson"
)

// NoDuplicateVerticesName is the registry name of the duplicate-vertex rule.
const NoDuplicateVerticesName = "no_duplicate_vertices"

// DuplicateVertex reports that vertices[DuplicateIndex] repeats
// vertices[FirstIndex].
type DuplicateVertex struct {
	FirstIndex     int       `json:"first_index" yaml:"first_index"`
	DuplicateIndex int       `json:"duplicate_index" yaml:"duplicate_index"`
	Coordinates    [3]string `json:"coordinates" yaml:"coordinates"`
}

// vertexKey is the exact JSON text of each coordinate, so 1 and 1.0 differ.
type vertexKey [3]string

type noDuplicateVertices struct{}

// NoDuplicateVertices returns the checker that rejects repeated entries in
// the "vertices" array.
func NoDuplicateVertices() Checker {
	return noDuplicateVertices{}
}

func (noDuplicateVertices) Name() string { return NoDuplicateVerticesName }

func (noDuplicateVertices) Description() string {
	return "no two entries of \"vertices\" have identical coordinates"
}

func (noDuplicateVertices) Check(doc *cityjson.Document) (Result, error) {
	dups, err := FindDuplicateVertices(doc)
	if err != nil {
		return Result{}, err
	}
	res := Result{Valid: len(dups) == 0}
	for _, d := range dups {
		res.Findings = append(res.Findings, Finding{
			Rule:    NoDuplicateVerticesName,
			Message: fmt.Sprintf("vertices[%d] == vertices[%d]", d.FirstIndex, d.DuplicateIndex),
			Details: d,
		})
	}
	return res, nil
}

// FindDuplicateVertices returns every repeated vertex in index order. Each
// repeat is paired with the first occurrence of the same coordinates.
//
// A missing "vertices" member, or one that is not an array of 3-element
// arrays, yields ErrPrecondition.
func FindDuplicateVertices(doc *cityjson.Document) ([]DuplicateVertex, error) {
	raw, ok := doc.Field("vertices")
	if !ok {
		return nil, fmt.Errorf("%w: no \"vertices\" member", ErrPrecondition)
	}
	verts, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: \"vertices\" is not an array", ErrPrecondition)
	}

	seen := make(map[vertexKey]int, len(verts))
	var out []DuplicateVertex
	for i, v := range verts {
		key, err := keyOf(v)
		if err != nil {
			return nil, fmt.Errorf("%w: vertices[%d]: %v", ErrPrecondition, i, err)
		}
		first, dup := seen[key]
		if !dup {
			seen[key] = i
			continue
		}
		out = append(out, DuplicateVertex{FirstIndex: first, DuplicateIndex: i, Coordinates: key})
	}
	return out, nil
}

func keyOf(v any) (vertexKey, error) {
	var key vertexKey
	arr, ok := v.([]any)
	if !ok {
		return key, fmt.Errorf("not an array")
	}
	if len(arr) != 3 {
		return key, fmt.Errorf("has %d coordinates, want 3", len(arr))
	}
	for k, c := range arr {
		b, err := json.Marshal(c)
		if err != nil {
			return key, err
		}
		key[k] = string(b)
	}
	return key, nil
}
