package graph

// Producer compiled zero-argument constructor
type Producer func() (any, error)

// Compile flattens desc and lowers the flat tree into nested closures.
// Inlined dependencies leave no resolve call behind; opaque ones are called
// through ResolveAny each time the producer runs.
func Compile(desc *Description) (Producer, error) {
	flat, err := Flatten(desc)
	if err != nil {
		return nil, err
	}
	return lower(flat.root, flat.deps)
}

func lower(n Node, deps []Dependency) (Producer, error) {
	switch v := n.(type) {
	case *Constant:
		value := v.Value
		return func() (any, error) {
			return value, nil
		}, nil

	case *DependencyRef:
		if v.Index < 0 || v.Index >= len(deps) {
			return nil, ErrIndexOutOfRange.WithMsgf("dependency index %d out of range [0,%d)", v.Index, len(deps))
		}
		return deps[v.Index].ResolveAny, nil

	case *Call:
		args, err := lowerAll(v.Args, deps)
		if err != nil {
			return nil, err
		}
		fn := v.Fn
		return func() (any, error) {
			values := make([]any, len(args))
			for i, arg := range args {
				value, err := arg()
				if err != nil {
					return nil, err
				}
				values[i] = value
			}
			return fn(values)
		}, nil

	case *MemberInit:
		base, err := lower(v.Base, deps)
		if err != nil {
			return nil, err
		}
		type assignment struct {
			value Producer
			set   Setter
		}
		assignments := make([]assignment, len(v.Fields))
		for i, field := range v.Fields {
			value, err := lower(field.Value, deps)
			if err != nil {
				return nil, err
			}
			assignments[i] = assignment{value: value, set: field.Set}
		}
		return func() (any, error) {
			target, err := base()
			if err != nil {
				return nil, err
			}
			for _, a := range assignments {
				value, err := a.value()
				if err != nil {
					return nil, err
				}
				if err := a.set(target, value); err != nil {
					return nil, err
				}
			}
			return target, nil
		}, nil

	default:
		return nil, ErrInvalidNode.WithMsgf("unsupported node %T", n)
	}
}

func lowerAll(nodes []Node, deps []Dependency) ([]Producer, error) {
	out := make([]Producer, len(nodes))
	for i, n := range nodes {
		p, err := lower(n, deps)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
