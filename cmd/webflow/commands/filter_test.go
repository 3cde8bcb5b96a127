package commands

import (
	"testing"

	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemFilter(t *testing.T) {
	t.Parallel()

	item := webflow.Item{"_id": "i1", "name": "Acme", "_draft": false, "price": 20.0, "tags": []any{"b2b", "eu"}}

	tests := []struct {
		expression string
		match      bool
	}{
		{`name == "Acme"`, true},
		{`name startsWith "A" && price >= 20`, true},
		{`_draft`, false},
		{`!_draft && price < 10`, false},
		{`"eu" in tags`, true},
		{`missing == nil`, true},
		{`name > 3`, false},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			t.Parallel()

			filter, err := compileItemFilter(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.match, filter.Match(item))
		})
	}
}

func TestItemFilter_Apply(t *testing.T) {
	t.Parallel()

	filter, err := compileItemFilter("price > 10")
	require.NoError(t, err)

	items := []webflow.Item{
		{"_id": "a", "price": 5.0},
		{"_id": "b", "price": 15.0},
		{"_id": "c"},
		{"_id": "d", "price": 30.0},
	}

	matched := filter.Apply(items)
	require.Len(t, matched, 2)
	assert.Equal(t, "b", matched[0].ID())
	assert.Equal(t, "d", matched[1].ID())
}

func TestCompileItemFilter_Errors(t *testing.T) {
	t.Parallel()

	_, err := compileItemFilter("   ")
	require.ErrorIs(t, err, ErrEmptyFilter)

	_, err = compileItemFilter("price >")
	require.Error(t, err)

	_, err = compileItemFilter(`"not a bool"`)
	require.Error(t, err)
}
