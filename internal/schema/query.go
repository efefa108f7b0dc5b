package schema

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Query evaluates a JSONPath selector against the persisted form of c,
// e.g. "$.BASEFOLDERS.*" or "$.LINKED03.objs[0]".
func Query(c *Config, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	return x.Get(c.Document()), nil
}
