package cityjson

import (
	"encoding/json"
	"math/big"
	"strconv"
)

// Version is a CityJSON schema generation.
type Version int

const (
	Unsupported Version = iota
	V1_0
	V1_1
)

// Supported lists every version with a bundled schema, oldest first.
var Supported = []Version{V1_0, V1_1}

// stringVersions lists the accepted spellings of a string "version"
// member. They match the bundled schemas exactly.
var stringVersions = map[string]Version{
	"1.0": V1_0,
	"1.1": V1_1,
}

// numericVersions lists the values a number "version" member may take.
// Numbers compare by value, so 1, 1.00 and 10e-1 all mean 1.0.
var numericVersions = []struct {
	value *big.Rat
	v     Version
}{
	{big.NewRat(1, 1), V1_0},
	{big.NewRat(11, 10), V1_1},
}

// String returns "1.0", "1.1" or "unsupported".
func (v Version) String() string {
	switch v {
	case V1_0:
		return "1.0"
	case V1_1:
		return "1.1"
	default:
		return "unsupported"
	}
}

// IsSupported reports whether v has a bundled schema.
func (v Version) IsSupported() bool {
	return v == V1_0 || v == V1_1
}

// ResolveVersion maps the document's "version" member to a Version.
// It never fails: a missing or unknown value yields Unsupported.
func ResolveVersion(d *Document) Version {
	raw, ok := d.Field("version")
	if !ok {
		return Unsupported
	}
	switch t := raw.(type) {
	case string:
		if v, ok := stringVersions[t]; ok {
			return v
		}
	case json.Number:
		return numericVersion(t.String())
	case float64:
		return numericVersion(strconv.FormatFloat(t, 'g', -1, 64))
	}
	return Unsupported
}

func numericVersion(text string) Version {
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return Unsupported
	}
	for _, nv := range numericVersions {
		if r.Cmp(nv.value) == 0 {
			return nv.v
		}
	}
	return Unsupported
}
