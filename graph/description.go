package graph

// Description construction description: a node tree plus the dependencies its
// placeholders point at. Immutable once created.
type Description struct {
	root Node
	deps []Dependency
}

// NewDescription validates a hand-built tree against its dependency list
func NewDescription(root Node, deps []Dependency) (*Description, error) {
	if isNil(root) {
		return nil, ErrInvalidNode.WithMsg("description root is nil")
	}
	for i, dep := range deps {
		if isNil(dep) {
			return nil, ErrMissingDependency.WithMsgf("dependency #%d is nil", i).WithData("index", i)
		}
	}
	if err := validate(root, len(deps)); err != nil {
		return nil, err
	}

	owned := make([]Dependency, len(deps))
	copy(owned, deps)
	return &Description{root: root, deps: owned}, nil
}

// Root returns the root node
func (d *Description) Root() Node {
	return d.root
}

// Len returns the number of dependencies
func (d *Description) Len() int {
	return len(d.deps)
}

// Dependency returns dependency i
func (d *Description) Dependency(i int) Dependency {
	return d.deps[i]
}

// Dependencies returns a copy of the dependency list
func (d *Description) Dependencies() []Dependency {
	out := make([]Dependency, len(d.deps))
	copy(out, d.deps)
	return out
}

func validate(n Node, depCount int) error {
	switch v := n.(type) {
	case nil:
		return ErrInvalidNode.WithMsg("nil node")
	case *Constant:
		if v == nil {
			return ErrInvalidNode.WithMsg("nil constant node")
		}
	case *Call:
		if v == nil {
			return ErrInvalidNode.WithMsg("nil call node")
		}
		if v.Fn == nil {
			return ErrInvalidNode.WithMsgf("call %q has no function", v.Name)
		}
		for _, arg := range v.Args {
			if err := validate(arg, depCount); err != nil {
				return err
			}
		}
	case *MemberInit:
		if v == nil {
			return ErrInvalidNode.WithMsg("nil member init node")
		}
		if err := validate(v.Base, depCount); err != nil {
			return err
		}
		for _, f := range v.Fields {
			if f.Set == nil {
				return ErrInvalidNode.WithMsgf("field %q has no setter", f.Name)
			}
			if err := validate(f.Value, depCount); err != nil {
				return err
			}
		}
	case *DependencyRef:
		if v == nil {
			return ErrInvalidNode.WithMsg("nil dependency node")
		}
		if v.Index < 0 || v.Index >= depCount {
			return ErrIndexOutOfRange.
				WithMsgf("dependency index %d out of range [0,%d)", v.Index, depCount).
				WithData("index", v.Index)
		}
	default:
		return ErrInvalidNode.WithMsgf("unsupported node %T", n)
	}
	return nil
}

// Builder collects dependencies while a front-end assembles a tree.
// Not safe for concurrent use.
type Builder struct {
	deps  []Dependency
	index map[Dependency]int
	err   error
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{index: make(map[Dependency]int)}
}

// Dependency returns a placeholder for dep. The same dependency used twice
// shares one slot. A nil dependency is recorded and reported by Build.
func (b *Builder) Dependency(dep Dependency) Node {
	if isNil(dep) {
		if b.err == nil {
			b.err = ErrMissingDependency.
				WithMsgf("dependency #%d is nil", len(b.deps)).
				WithData("index", len(b.deps))
		}
		return &DependencyRef{Index: -1}
	}

	if keyable(dep) {
		if i, ok := b.index[dep]; ok {
			return &DependencyRef{Index: i}
		}
	}

	i := len(b.deps)
	b.deps = append(b.deps, dep)
	if keyable(dep) {
		b.index[dep] = i
	}
	return &DependencyRef{Index: i}
}

// Err returns the first declaration error, if any
func (b *Builder) Err() error {
	return b.err
}

// Build finishes the description
func (b *Builder) Build(root Node) (*Description, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewDescription(root, b.deps)
}
