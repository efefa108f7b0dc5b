package schema

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// decodeHCL reads the HCL form of a config. Top-level groups may be written
// as object attributes or as unlabeled blocks:
//
//	ROOTS { rootFolder01 = null }
//	BASEFOLDERS = { baseFolder01 = ["LINKED01"] }
func decodeHCL(data []byte, filename string) (*Config, error) {
	file, diags := hclsyntax.ParseConfig(data, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected body type %T", filename, file.Body)
	}
	top, err := hclBody(body)
	if err != nil {
		return nil, err
	}
	return fromMembers(top)
}

type hclItem struct {
	pos   int
	name  string
	attr  *hclsyntax.Attribute
	block *hclsyntax.Block
}

// hclBody returns the attributes and blocks of body in source order.
func hclBody(body *hclsyntax.Body) ([]member, error) {
	items := make([]hclItem, 0, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		items = append(items, hclItem{pos: attr.SrcRange.Start.Byte, name: name, attr: attr})
	}
	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return nil, fmt.Errorf("%s: block %q must not have labels", block.DefRange(), block.Type)
		}
		items = append(items, hclItem{pos: block.TypeRange.Start.Byte, name: block.Type, block: block})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	members := make([]member, 0, len(items))
	for _, it := range items {
		var (
			v   any
			err error
		)
		if it.block != nil {
			v, err = hclBody(it.block.Body)
		} else {
			v, err = hclExpr(it.attr.Expr)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", it.name, err)
		}
		members = append(members, member{key: it.name, value: v})
	}
	return members, nil
}

func hclExpr(expr hclsyntax.Expression) (any, error) {
	switch e := expr.(type) {
	case *hclsyntax.ObjectConsExpr:
		members := make([]member, 0, len(e.Items))
		for _, item := range e.Items {
			kv, diags := item.KeyExpr.Value(nil)
			if diags.HasErrors() {
				return nil, diags
			}
			if kv.IsNull() || kv.Type() != cty.String {
				return nil, fmt.Errorf("%s: object keys must be strings", item.KeyExpr.Range())
			}
			v, err := hclExpr(item.ValueExpr)
			if err != nil {
				return nil, err
			}
			members = append(members, member{key: kv.AsString(), value: v})
		}
		return members, nil
	case *hclsyntax.TupleConsExpr:
		list := make([]any, 0, len(e.Exprs))
		for _, x := range e.Exprs {
			v, err := hclExpr(x)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	}

	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyScalar(v), nil
}

func ctyScalar(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	if v.Type() == cty.String {
		return v.AsString()
	}
	if v.CanIterateElements() {
		var list []any
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			list = append(list, ctyScalar(ev))
		}
		return list
	}
	return v
}
