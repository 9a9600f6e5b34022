package graph

// Flatten inlines every Inlinable dependency of desc, transitively.
//
// A placeholder for an Inlinable is replaced by the flattened root of that
// dependency's own description; its own placeholders are resolved against its
// own dependency list. Every other dependency stays opaque and is re-indexed
// into the dependency list of the result, one slot per distinct dependency.
//
// Inlined subtrees are copied, so two roots sharing an inner dependency each
// get an independent body.
func Flatten(desc *Description) (*Description, error) {
	if desc == nil {
		return nil, ErrInvalidState.WithMsg("description is nil")
	}

	f := &flattener{
		index: make(map[Dependency]int),
		stack: []*Description{desc},
	}
	root, err := f.inline(desc, desc.root)
	if err != nil {
		return nil, err
	}
	return &Description{root: root, deps: f.deps}, nil
}

type flattener struct {
	deps  []Dependency
	index map[Dependency]int
	stack []*Description // descriptions currently being inlined
}

func (f *flattener) inline(scope *Description, n Node) (Node, error) {
	switch v := n.(type) {
	case *Constant:
		return v, nil

	case *Call:
		args := make([]Node, len(v.Args))
		for i, arg := range v.Args {
			a, err := f.inline(scope, arg)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return &Call{Name: v.Name, Fn: v.Fn, Args: args}, nil

	case *MemberInit:
		base, err := f.inline(scope, v.Base)
		if err != nil {
			return nil, err
		}
		fields := make([]Field, len(v.Fields))
		for i, field := range v.Fields {
			value, err := f.inline(scope, field.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: field.Name, Value: value, Set: field.Set}
		}
		return &MemberInit{Base: base, Fields: fields}, nil

	case *DependencyRef:
		dep := scope.deps[v.Index]
		inl, ok := dep.(Inlinable)
		if !ok {
			return &DependencyRef{Index: f.add(dep)}, nil
		}

		inner := inl.Description()
		if inner == nil {
			return nil, ErrInvalidState.
				WithMsgf("dependency %v is not configured", dep.Type()).
				WithData("type", typeName(dep))
		}
		for _, active := range f.stack {
			if active == inner {
				return nil, ErrCycle.
					WithMsgf("dependency cycle through %v", dep.Type()).
					WithData("type", typeName(dep))
			}
		}

		f.stack = append(f.stack, inner)
		body, err := f.inline(inner, inner.root)
		f.stack = f.stack[:len(f.stack)-1]
		return body, err

	default:
		return nil, ErrInvalidNode.WithMsgf("unsupported node %T", n)
	}
}

func (f *flattener) add(dep Dependency) int {
	if i, ok := f.lookup(dep); ok {
		return i
	}
	i := len(f.deps)
	f.deps = append(f.deps, dep)
	if keyable(dep) {
		f.index[dep] = i
	}
	return i
}

func (f *flattener) lookup(dep Dependency) (int, bool) {
	if !keyable(dep) {
		return 0, false
	}
	i, ok := f.index[dep]
	return i, ok
}

func typeName(dep Dependency) string {
	if t := dep.Type(); t != nil {
		return t.String()
	}
	return "<nil>"
}
