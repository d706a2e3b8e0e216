package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Helpers for the JSON array columns shared by several models. Decoding is
// deliberately forgiving: malformed bytes decode to nil rather than erroring,
// since a broken set must never take a feed down.

// StringsFromJSON decodes a JSON array column into a string slice.
func StringsFromJSON(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var vals []string
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil
	}
	return vals
}

// IntsFromJSON decodes a JSON array column into an int slice.
func IntsFromJSON(raw datatypes.JSON) []int {
	if len(raw) == 0 {
		return nil
	}
	var vals []int
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil
	}
	return vals
}

// JSONStrings encodes a string slice for storage. A nil or empty slice encodes
// as SQL null, which readers interpret per-column (usually "all" or "unset").
func JSONStrings(vals []string) datatypes.JSON {
	if len(vals) == 0 {
		return nil
	}
	raw, err := json.Marshal(vals)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// JSONInts encodes an int slice for storage, nil when empty.
func JSONInts(vals []int) datatypes.JSON {
	if len(vals) == 0 {
		return nil
	}
	raw, err := json.Marshal(vals)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
