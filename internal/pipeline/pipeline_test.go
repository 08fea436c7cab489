package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/cjval/internal/cityjson"
	"github.com/kamusis/cjval/internal/rules"
	"github.com/kamusis/cjval/internal/schemas"
)

func newPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	c, err := schemas.Default()
	require.NoError(t, err)
	return New(c, rules.Default(), opts...)
}

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func TestValidateFile_ValidV11(t *testing.T) {
	r, err := newPipeline(t).ValidateFile(testdata("valid_v11.city.json"))
	require.NoError(t, err)
	require.True(t, r.Valid)
	require.Equal(t, "1.1", r.Version)
	require.Empty(t, r.StructuralErrors)
	require.Zero(t, r.FindingCount())
	require.Equal(t, testdata("valid_v11.city.json"), r.Source)
}

func TestValidateFile_ValidV10(t *testing.T) {
	r, err := newPipeline(t).ValidateFile(testdata("valid_v10.json"))
	require.NoError(t, err)
	require.True(t, r.Valid, "%+v", r)
	require.Equal(t, "1.0", r.Version)
}

func TestValidateBytes_V10VersionSpellings(t *testing.T) {
	body, err := os.ReadFile(testdata("valid_v10.json"))
	require.NoError(t, err)

	p := newPipeline(t)
	for _, spelling := range []string{`"1.0"`, `1`, `1.00`, `1e0`, `10e-1`} {
		doc := strings.Replace(string(body), `"version": 1.0`, `"version": `+spelling, 1)
		r, err := p.ValidateBytes("v10", []byte(doc))
		require.NoError(t, err)
		require.True(t, r.Valid, "version %s: %+v", spelling, r)
		require.Equal(t, "1.0", r.Version)
	}
}

func TestValidateFile_MissingRequiredField(t *testing.T) {
	r, err := newPipeline(t).ValidateFile(testdata("missing_transform_v11.json"))
	require.NoError(t, err)
	require.False(t, r.Valid)
	require.Len(t, r.StructuralErrors, 1)
	require.Equal(t, "", r.StructuralErrors[0].Pointer())
	require.Contains(t, r.StructuralErrors[0].Message, "transform")
}

func TestValidateFile_DuplicateVertices(t *testing.T) {
	r, err := newPipeline(t).ValidateFile(testdata("duplicates_v11.json"))
	require.NoError(t, err)
	require.False(t, r.Valid)
	require.Empty(t, r.StructuralErrors)
	require.Len(t, r.Rules, 1)
	require.Equal(t, []rules.Finding{{
		Rule:    rules.NoDuplicateVerticesName,
		Message: "vertices[0] == vertices[2]",
		Details: rules.DuplicateVertex{FirstIndex: 0, DuplicateIndex: 2, Coordinates: [3]string{"0", "0", "0"}},
	}}, r.Rules[0].Findings)
}

func TestValidateFile_UnsupportedVersionStillRunsRules(t *testing.T) {
	r, err := newPipeline(t).ValidateFile(testdata("unsupported_v20.json"))
	require.NoError(t, err)
	require.False(t, r.Valid)
	require.False(t, r.VersionSupported)
	require.Empty(t, r.StructuralErrors)
	require.Len(t, r.Rules, 1)
	require.True(t, r.Rules[0].Passed)
}

func TestValidateFile_NotCityJSON(t *testing.T) {
	_, err := newPipeline(t).ValidateFile(testdata("not_cityjson.json"))
	require.ErrorIs(t, err, cityjson.ErrNotCityJSON)

	r, err := newPipeline(t, WithRequireCityJSONType(false)).ValidateFile(testdata("not_cityjson.json"))
	require.NoError(t, err)
	require.False(t, r.Valid)
	require.NotEmpty(t, r.StructuralErrors)
	require.Len(t, r.Rules, 1)
	require.Contains(t, r.Rules[0].Error, "vertices")
}

func TestValidateBytes_TypeCheckAppliesToEveryVersion(t *testing.T) {
	p := newPipeline(t)
	for _, doc := range []string{
		`{"type": "cityjson", "version": "1.1", "vertices": []}`,
		`{"version": 1.0, "vertices": []}`,
		`{"type": "Other", "version": "9", "vertices": []}`,
	} {
		_, err := p.ValidateBytes("mem", []byte(doc))
		require.ErrorIs(t, err, cityjson.ErrNotCityJSON, doc)
	}
}

func TestValidateFile_Fatal(t *testing.T) {
	p := newPipeline(t)

	_, err := p.ValidateFile(testdata("truncated.json"))
	require.ErrorIs(t, err, cityjson.ErrParse)

	_, err = p.ValidateFile(testdata("does-not-exist.json"))
	require.ErrorIs(t, err, ErrRead)

	_, err = newPipeline(t, WithMaxDocumentBytes(16)).ValidateFile(testdata("valid_v10.json"))
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = newPipeline(t, WithMaxDocumentBytes(16)).ValidateBytes("mem", []byte(strings.Repeat(" ", 17)))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestValidateFile_NoSizeBound(t *testing.T) {
	r, err := newPipeline(t, WithMaxDocumentBytes(0)).ValidateFile(testdata("valid_v10.json"))
	require.NoError(t, err)
	require.True(t, r.Valid)
}

func TestValidateFile_MalformedVerticesIsRuleError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	doc := `{"type": "CityJSON", "version": "1.1", "transform": {"scale": [1,1,1], "translate": [0,0,0]}, "CityObjects": {}, "vertices": [[0,0]]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	r, err := newPipeline(t).ValidateFile(path)
	require.NoError(t, err)
	require.False(t, r.Valid)
	require.Len(t, r.StructuralErrors, 1)
	require.Equal(t, "/vertices/0", r.StructuralErrors[0].Pointer())
	require.False(t, r.Rules[0].Passed)
	require.Contains(t, r.Rules[0].Error, rules.ErrPrecondition.Error())
}

func TestValidate_DisabledRule(t *testing.T) {
	c, err := schemas.Default()
	require.NoError(t, err)
	reg, err := rules.Default().Without(rules.NoDuplicateVerticesName)
	require.NoError(t, err)

	r, err := New(c, reg).ValidateFile(testdata("duplicates_v11.json"))
	require.NoError(t, err)
	require.True(t, r.Valid)
	require.Empty(t, r.Rules)
}

func TestValidate_LogsStages(t *testing.T) {
	var buf bytes.Buffer
	p := newPipeline(t, WithLogger(log.NewLogfmtLogger(&buf)))
	_, err := p.ValidateFile(testdata("valid_v11.city.json"))
	require.NoError(t, err)
	require.Contains(t, buf.String(), `msg="resolved version"`)
	require.Contains(t, buf.String(), "version=1.1")
	require.Contains(t, buf.String(), `msg="rule done"`)
}
