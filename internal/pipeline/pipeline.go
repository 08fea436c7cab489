// Package pipeline runs one CityJSON document through every validation
// stage: parse, type check, version resolution, schema validation,
// semantic rules and aggregation.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/kamusis/cjval/internal/cityjson"
	"github.com/kamusis/cjval/internal/report"
	"github.com/kamusis/cjval/internal/rules"
	"github.com/kamusis/cjval/internal/schemas"
	"github.com/kamusis/cjval/internal/structural"
)

// DefaultMaxDocumentBytes bounds the size of a single document.
const DefaultMaxDocumentBytes int64 = 256 << 20

var (
	// ErrRead indicates the document could not be read.
	ErrRead = errors.New("cannot read document")

	// ErrTooLarge indicates the document exceeds the configured size bound.
	ErrTooLarge = errors.New("document too large")
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for stage diagnostics.
func WithLogger(l log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMaxDocumentBytes bounds the document size; n <= 0 means no bound.
func WithMaxDocumentBytes(n int64) Option {
	return func(p *Pipeline) { p.maxBytes = n }
}

// WithRequireCityJSONType toggles the "type": "CityJSON" pre-check.
func WithRequireCityJSONType(on bool) Option {
	return func(p *Pipeline) { p.requireType = on }
}

// Pipeline validates documents against a shared catalog and rule registry.
// It keeps no per-document state and may be used from several goroutines.
type Pipeline struct {
	catalog     *schemas.Catalog
	registry    *rules.Registry
	logger      log.Logger
	maxBytes    int64
	requireType bool
}

// New returns a Pipeline. The type pre-check is on by default.
func New(catalog *schemas.Catalog, registry *rules.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog:     catalog,
		registry:    registry,
		logger:      log.NewNopLogger(),
		maxBytes:    DefaultMaxDocumentBytes,
		requireType: true,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ValidateFile reads path and validates it.
func (p *Pipeline) ValidateFile(path string) (*report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrRead, path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if p.maxBytes > 0 {
		st, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrRead, path, err)
		}
		if st.Size() > p.maxBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, path, st.Size(), p.maxBytes)
		}
		r = io.LimitReader(f, p.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrRead, path, err)
	}
	return p.ValidateBytes(path, data)
}

// ValidateBytes parses data and validates it. source names the document in
// the report. Returned errors are fatal for this document; everything else
// is collected into the report.
func (p *Pipeline) ValidateBytes(source string, data []byte) (*report.Report, error) {
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, source, p.maxBytes)
	}
	doc, err := cityjson.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	level.Debug(p.logger).Log("msg", "parsed document", "source", source, "bytes", len(data))
	return p.ValidateDocument(source, doc)
}

// ValidateDocument runs every stage after parsing.
func (p *Pipeline) ValidateDocument(source string, doc *cityjson.Document) (*report.Report, error) {
	if p.requireType {
		if err := cityjson.CheckType(doc); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
	}

	version := cityjson.ResolveVersion(doc)
	level.Debug(p.logger).Log("msg", "resolved version", "source", source, "version", version)

	var errs []structural.ValidationError
	if version.IsSupported() {
		sch, err := p.catalog.Schema(version)
		if err != nil {
			return nil, err
		}
		errs = structural.Validate(doc.Value(), sch)
		level.Debug(p.logger).Log("msg", "schema validation done", "source", source, "errors", len(errs))
	} else {
		level.Debug(p.logger).Log("msg", "skipping schema validation", "source", source, "reason", "unsupported version")
	}

	outcomes := p.registry.Run(doc)
	for _, o := range outcomes {
		if o.Err != nil {
			level.Warn(p.logger).Log("msg", "rule could not run", "source", source, "rule", o.Rule, "err", o.Err)
			continue
		}
		level.Debug(p.logger).Log("msg", "rule done", "source", source, "rule", o.Rule, "findings", len(o.Result.Findings))
	}

	return report.Aggregate(source, version, errs, outcomes), nil
}
