// Package schemas bundles the CityJSON JSON Schemas and compiles them once
// per process.
package schemas

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/kamusis/cjval/internal/cityjson"
)

//go:embed v1.0/cityjson.schema.json v1.1/cityjson.schema.json
var bundled embed.FS

var (
	// ErrBadSchema indicates an embedded schema that does not parse or compile.
	// It points at a broken build, never at user input.
	ErrBadSchema = errors.New("invalid embedded schema")

	// ErrUnsupportedVersion is returned when asking for a version with no schema.
	ErrUnsupportedVersion = errors.New("no schema for version")
)

// files maps each supported version to its path inside the bundle.
var files = map[cityjson.Version]string{
	cityjson.V1_0: "v1.0/cityjson.schema.json",
	cityjson.V1_1: "v1.1/cityjson.schema.json",
}

// Catalog is an immutable set of compiled schemas keyed by version.
// It is safe for concurrent use.
type Catalog struct {
	schemas map[cityjson.Version]*jsonschema.Schema
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the process-wide catalog built from the embedded schemas.
// The first call compiles; later calls return the same catalog (or error).
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = New(bundled)
	})
	return defaultCatalog, defaultErr
}

// New compiles a catalog from fsys, which must hold one schema file per
// supported version at the same paths as the embedded bundle.
func New(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{schemas: make(map[cityjson.Version]*jsonschema.Schema, len(files))}
	for _, v := range cityjson.Supported {
		sch, err := compile(fsys, files[v], ResourceURL(v))
		if err != nil {
			return nil, fmt.Errorf("%w: CityJSON %s: %v", ErrBadSchema, v, err)
		}
		c.schemas[v] = sch
	}
	return c, nil
}

func compile(fsys fs.FS, name, url string) (*jsonschema.Schema, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("cannot load %s: %w", name, err)
	}
	sch, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("cannot compile %s: %w", name, err)
	}
	return sch, nil
}

// ResourceURL is the identifier a version's schema is registered under.
func ResourceURL(v cityjson.Version) string {
	return "https://www.cityjson.org/schemas/" + v.String() + "/cityjson.schema.json"
}

// Schema returns the compiled schema for v. Callers must resolve the version
// first; asking for Unsupported returns ErrUnsupportedVersion.
func (c *Catalog) Schema(v cityjson.Version) (*jsonschema.Schema, error) {
	sch, ok := c.schemas[v]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnsupportedVersion, v)
	}
	return sch, nil
}

// Versions lists the versions in the catalog, oldest first.
func (c *Catalog) Versions() []cityjson.Version {
	out := make([]cityjson.Version, 0, len(c.schemas))
	for _, v := range cityjson.Supported {
		if _, ok := c.schemas[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Source returns the raw embedded schema text for v.
func Source(v cityjson.Version) ([]byte, error) {
	name, ok := files[v]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnsupportedVersion, v)
	}
	return bundled.ReadFile(name)
}
