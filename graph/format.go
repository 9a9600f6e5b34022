package graph

import (
	"fmt"
	"strings"
)

// Format renders a node tree, one node per line, two spaces per level
func Format(n Node) string {
	var sb strings.Builder
	format(&sb, n, nil, 0)
	return sb.String()
}

// String renders the tree with dependency types
func (d *Description) String() string {
	if d == nil {
		return "<nil>"
	}
	var sb strings.Builder
	format(&sb, d.root, d.deps, 0)
	return sb.String()
}

func format(sb *strings.Builder, n Node, deps []Dependency, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := n.(type) {
	case *Constant:
		fmt.Fprintf(sb, "%sConstant %v (%T)\n", indent, v.Value, v.Value)
	case *Call:
		fmt.Fprintf(sb, "%sCall %s\n", indent, v.Name)
		for _, arg := range v.Args {
			format(sb, arg, deps, depth+1)
		}
	case *MemberInit:
		fmt.Fprintf(sb, "%sMemberInit\n", indent)
		format(sb, v.Base, deps, depth+1)
		for _, f := range v.Fields {
			fmt.Fprintf(sb, "%s  .%s =\n", indent, f.Name)
			format(sb, f.Value, deps, depth+2)
		}
	case *DependencyRef:
		if v.Index >= 0 && v.Index < len(deps) {
			fmt.Fprintf(sb, "%sDependency #%d (%s)\n", indent, v.Index, typeName(deps[v.Index]))
			return
		}
		fmt.Fprintf(sb, "%sDependency #%d\n", indent, v.Index)
	default:
		fmt.Fprintf(sb, "%s<%T>\n", indent, n)
	}
}
