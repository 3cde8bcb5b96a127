package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
)

// ErrEmptyFilter is returned for a blank --where expression.
var ErrEmptyFilter = errors.New("empty filter expression")

// itemFilter is a compiled boolean expression over item fields, such as
// `_draft == false && price > 10`. Field names resolve against the item;
// missing fields evaluate to nil.
type itemFilter struct {
	expression string
	program    *vm.Program
}

func compileItemFilter(expression string) (*itemFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, ErrEmptyFilter
	}

	program, err := expr.Compile(expression,
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter %q: %w", expression, err)
	}

	return &itemFilter{expression: expression, program: program}, nil
}

// Match reports whether item satisfies the filter. Evaluation errors, such
// as comparing a string with a number, count as no match.
func (f *itemFilter) Match(item webflow.Item) bool {
	result, err := expr.Run(f.program, map[string]any(item))
	if err != nil {
		return false
	}

	matched, _ := result.(bool)

	return matched
}

// Apply returns the items that match, in order.
func (f *itemFilter) Apply(items []webflow.Item) []webflow.Item {
	matched := make([]webflow.Item, 0, len(items))

	for _, item := range items {
		if f.Match(item) {
			matched = append(matched, item)
		}
	}

	return matched
}
