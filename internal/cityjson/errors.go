package cityjson

import "errors"

// Sentinel errors for programmatic checking via errors.Is().
var (
	// ErrParse indicates the input is not a JSON object.
	ErrParse = errors.New("parse error")

	// ErrNotCityJSON indicates a well-formed JSON object whose "type" is not "CityJSON".
	ErrNotCityJSON = errors.New("not a CityJSON document")
)
