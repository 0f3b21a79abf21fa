package domain

import (
	"encoding/json"
	"strings"

	dErrors "carecompliance/pkg/domain-errors"
)

// ItemKind identifies which compliance obligation an overview item tracks.
// Invariant: the value must be one of the supported kinds.
//
// Construct via ParseItemKind at trust boundaries; direct casting bypasses validation.
type ItemKind string

const (
	ItemKindISP      ItemKind = "isp"
	ItemKindFireEvac ItemKind = "fire-evac"
)

// itemKinds is ordered longest prefix first so string parsing never matches
// "isp-" inside a longer kind.
var itemKinds = []ItemKind{ItemKindFireEvac, ItemKindISP}

// ParseItemKind validates a kind from external input.
func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(strings.TrimSpace(s))
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "unsupported item kind: "+s)
	}
	return k, nil
}

func (k ItemKind) IsValid() bool {
	for _, known := range itemKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k ItemKind) String() string {
	return string(k)
}

// ItemRef correlates an overview item with its underlying entity. For ISP
// items EntityID is the resident id; for Fire-Evac items it is the plan id.
//
// ItemRef travels as a structured value; String exists for display and for
// accepting legacy "<kind>-<entityId>" input.
type ItemRef struct {
	Kind     ItemKind `json:"kind"`
	EntityID string   `json:"entity_id"`
}

// NewItemRef validates both parts.
func NewItemRef(kind ItemKind, entityID string) (ItemRef, error) {
	if !kind.IsValid() {
		return ItemRef{}, dErrors.New(dErrors.CodeBadRequest, "unsupported item kind: "+string(kind))
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return ItemRef{}, dErrors.New(dErrors.CodeBadRequest, "item entity id is required")
	}
	return ItemRef{Kind: kind, EntityID: entityID}, nil
}

// ParseItemRef accepts the legacy string form. The kind is matched by its
// known prefix, so entity ids may themselves contain hyphens.
func ParseItemRef(s string) (ItemRef, error) {
	for _, kind := range itemKinds {
		if rest, ok := strings.CutPrefix(s, string(kind)+"-"); ok {
			return NewItemRef(kind, rest)
		}
	}
	return ItemRef{}, dErrors.New(dErrors.CodeBadRequest, "malformed item id: "+s)
}

func (r ItemRef) String() string {
	return string(r.Kind) + "-" + r.EntityID
}

func (r ItemRef) IsZero() bool {
	return r.Kind == "" && r.EntityID == ""
}

// UnmarshalJSON accepts both the structured object and the legacy string form.
func (r *ItemRef) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		parsed, err := ParseItemRef(legacy)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}
	var raw struct {
		Kind     string `json:"kind"`
		EntityID string `json:"entity_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed item reference")
	}
	parsed, err := NewItemRef(ItemKind(raw.Kind), raw.EntityID)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
