package scheduler

import "github.com/viant/oploader/model/operation"

// registry maps names to operations preserving first insertion order.
// Replacing a name keeps its slot; removing it frees the slot.
type registry struct {
	names      []string
	operations map[string]*operation.Operation
}

func newRegistry() *registry {
	return &registry{operations: map[string]*operation.Operation{}}
}

func (r *registry) get(name string) *operation.Operation {
	return r.operations[name]
}

// put stores op and returns the record it replaced, if any.
func (r *registry) put(op *operation.Operation) *operation.Operation {
	prev, ok := r.operations[op.Name]
	if !ok {
		r.names = append(r.names, op.Name)
	}
	r.operations[op.Name] = op
	return prev
}

func (r *registry) remove(name string) *operation.Operation {
	op, ok := r.operations[name]
	if !ok {
		return nil
	}
	delete(r.operations, name)
	for i, candidate := range r.names {
		if candidate == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
	return op
}

// list returns operations in insertion order.
func (r *registry) list() []*operation.Operation {
	ret := make([]*operation.Operation, 0, len(r.names))
	for _, name := range r.names {
		ret = append(ret, r.operations[name])
	}
	return ret
}

func (r *registry) len() int {
	return len(r.names)
}
