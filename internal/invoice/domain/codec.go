package domain

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// EncodeLineItems serializes line items for the storage boundary. A nil
// slice encodes to an empty JSON array.
func EncodeLineItems(items []LineItem) (datatypes.JSON, error) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeLineItems deserializes line items from the storage boundary.
// Absent or malformed text yields an empty slice.
func DecodeLineItems(raw datatypes.JSON) []LineItem {
	if len(raw) == 0 {
		return []LineItem{}
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return []LineItem{}
	}
	return items
}

// EncodeTags serializes the tag collection.
func EncodeTags(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeTags deserializes tags; absent or malformed text yields an
// empty slice.
func DecodeTags(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
