package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "only blanks", in: []string{"", "  "}, want: nil},
		{name: "trims and keeps order", in: []string{" Beta", "Alpha ", "Beta"}, want: []string{"Beta", "Alpha"}},
		{name: "case matters", in: []string{"Alpha", "alpha"}, want: []string{"Alpha", "alpha"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Compact(tc.in))
		})
	}
}

func TestCompactFold(t *testing.T) {
	got := CompactFold([]string{"Sup@Example.org", " sup@example.org ", "admin@example.org"})
	assert.Equal(t, []string{"sup@example.org", "admin@example.org"}, got)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitList("kafka-1:9092, kafka-2:9092,,kafka-1:9092"))
	assert.Nil(t, SplitList(""))
}
