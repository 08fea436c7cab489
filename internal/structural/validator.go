// Package structural checks a decoded document against a compiled JSON
// Schema and flattens the engine's error tree into a sorted list.
package structural

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidationError is one schema violation.
type ValidationError struct {
	// InstancePath locates the offending value, one segment per key or index.
	InstancePath []string `json:"instance_path" yaml:"instance_path"`
	// KeywordLocation locates the failing keyword inside the schema.
	KeywordLocation string `json:"keyword_location" yaml:"keyword_location"`
	Message         string `json:"message" yaml:"message"`
}

// Pointer renders InstancePath as an RFC 6901 JSON Pointer ("" is the root).
func (e ValidationError) Pointer() string {
	return Pointer(e.InstancePath)
}

// Pointer joins path segments into a JSON Pointer.
func Pointer(path []string) string {
	var sb strings.Builder
	for _, seg := range path {
		sb.WriteByte('/')
		seg = strings.ReplaceAll(seg, "~", "~0")
		sb.WriteString(strings.ReplaceAll(seg, "/", "~1"))
	}
	return sb.String()
}

// Validator evaluates instances against one compiled schema.
// It holds no mutable state and may be shared between goroutines.
type Validator struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

// New returns a Validator for sch. Messages are rendered in English.
func New(sch *jsonschema.Schema) *Validator {
	return &Validator{schema: sch, printer: message.NewPrinter(language.English)}
}

// Validate is shorthand for New(sch).Validate(doc).
func Validate(doc any, sch *jsonschema.Schema) []ValidationError {
	return New(sch).Validate(doc)
}

// Validate returns every violation of the schema by doc. An empty result
// means doc is structurally valid. The order is stable across runs.
func (v *Validator) Validate(doc any) []ValidationError {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []ValidationError{{InstancePath: []string{}, Message: err.Error()}}
	}
	var out []ValidationError
	v.collect(ve, &out)
	sortErrors(out)
	return out
}

// collect appends the leaves of the cause tree; inner nodes only group them.
func (v *Validator) collect(ve *jsonschema.ValidationError, out *[]ValidationError) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			v.collect(c, out)
		}
		return
	}
	path := make([]string, len(ve.InstanceLocation))
	copy(path, ve.InstanceLocation)
	*out = append(*out, ValidationError{
		InstancePath:    path,
		KeywordLocation: keywordLocation(ve),
		Message:         ve.ErrorKind.LocalizedString(v.printer),
	})
}

func keywordLocation(ve *jsonschema.ValidationError) string {
	loc := ve.SchemaURL
	if i := strings.IndexByte(loc, '#'); i >= 0 {
		loc = loc[i+1:]
	} else {
		loc = ""
	}
	if kp := ve.ErrorKind.KeywordPath(); len(kp) > 0 {
		loc += "/" + strings.Join(kp, "/")
	}
	return loc
}

func sortErrors(errs []ValidationError) {
	sort.SliceStable(errs, func(i, j int) bool {
		if c := comparePaths(errs[i].InstancePath, errs[j].InstancePath); c != 0 {
			return c < 0
		}
		if errs[i].KeywordLocation != errs[j].KeywordLocation {
			return errs[i].KeywordLocation < errs[j].KeywordLocation
		}
		return errs[i].Message < errs[j].Message
	})
}

// comparePaths orders paths segment by segment; array indices compare
// numerically so vertices/2 sorts before vertices/10.
func comparePaths(a, b []string) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] == b[k] {
			continue
		}
		ai, aerr := strconv.Atoi(a[k])
		bi, berr := strconv.Atoi(b[k])
		if aerr == nil && berr == nil && ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
		if a[k] < b[k] {
			return -1
		}
		return 1
	}
	return len(a) - len(b)
}
