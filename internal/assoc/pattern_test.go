package assoc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/assocgen/internal/assoc"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		input    string
		alts     int
		tuples   []bool
		wildcard bool
	}{
		{input: "1", alts: 1, tuples: []bool{false}},
		{input: "2, 22", alts: 2, tuples: []bool{false, false}},
		{input: "_", alts: 1, tuples: []bool{false}, wildcard: true},
		{input: "(_)", alts: 1, tuples: []bool{false}, wildcard: true},
		{input: "(1, 0), (1, 1)", alts: 2, tuples: []bool{true, true}},
		{input: "(2, _)", alts: 1, tuples: []bool{true}},
		{input: "(_, _)", alts: 1, tuples: []bool{true}, wildcard: true},
		{input: "3, _", alts: 2, tuples: []bool{false, false}, wildcard: true},
		{input: "(1 + 2)", alts: 1, tuples: []bool{false}},
		{input: `"a", f(1, 2)`, alts: 2, tuples: []bool{false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := assoc.ParsePattern(tt.input)
			require.NoError(t, err)
			require.Len(t, p.Alternatives, tt.alts)
			for i, alt := range p.Alternatives {
				assert.Equal(t, tt.tuples[i], alt.Tuple, "alternative %d", i)
			}
			assert.Equal(t, tt.wildcard, p.IsWildcard())
		})
	}
}

func TestParsePatternTupleElements(t *testing.T) {
	p, err := assoc.ParsePattern("(2, _, x)")
	require.NoError(t, err)
	require.Len(t, p.Alternatives, 1)

	elems := p.Alternatives[0].Elements
	require.Len(t, elems, 3)
	assert.NotNil(t, elems[0])
	assert.Nil(t, elems[1])
	assert.NotNil(t, elems[2])
	assert.False(t, p.Alternatives[0].IsWildcard())
}

func TestParsePatternErrors(t *testing.T) {
	tests := []string{
		"",
		"1,",
		", 2",
		"(1, )",
		"1 +",
		"(1, 2",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := assoc.ParsePattern(input)
			assert.Error(t, err)
		})
	}
}
