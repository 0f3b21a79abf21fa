package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "carecompliance/pkg/domain-errors"
)

func TestParseItemRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ItemRef
		wantErr bool
	}{
		{name: "isp", input: "isp-res-1", want: ItemRef{Kind: ItemKindISP, EntityID: "res-1"}},
		{name: "fire-evac keeps hyphenated id", input: "fire-evac-3f2b-4a5c", want: ItemRef{Kind: ItemKindFireEvac, EntityID: "3f2b-4a5c"}},
		{name: "unknown kind", input: "consent-1", wantErr: true},
		{name: "missing id", input: "isp-", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseItemRef(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.input, got.String())
		})
	}
}

func TestItemRef_UnmarshalJSON(t *testing.T) {
	t.Run("structured form", func(t *testing.T) {
		var ref ItemRef
		require.NoError(t, json.Unmarshal([]byte(`{"kind":"fire-evac","entity_id":"plan-9"}`), &ref))
		assert.Equal(t, ItemRef{Kind: ItemKindFireEvac, EntityID: "plan-9"}, ref)
	})

	t.Run("legacy string form", func(t *testing.T) {
		var refs []ItemRef
		require.NoError(t, json.Unmarshal([]byte(`["isp-r1","fire-evac-p2"]`), &refs))
		assert.Equal(t, []ItemRef{
			{Kind: ItemKindISP, EntityID: "r1"},
			{Kind: ItemKindFireEvac, EntityID: "p2"},
		}, refs)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		var ref ItemRef
		err := json.Unmarshal([]byte(`{"kind":"other","entity_id":"x"}`), &ref)
		require.Error(t, err)
	})
}
