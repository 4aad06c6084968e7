// Package roles classifies participants as customer or operator.
package roles

// Resolver answers role questions against a static identity allow-list
// loaded once at process start.
type Resolver struct {
	operators map[int64]struct{}
}

// NewResolver builds a Resolver from the operator id allow-list.
func NewResolver(operatorIDs []int64) *Resolver {
	ops := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		ops[id] = struct{}{}
	}
	return &Resolver{operators: ops}
}

// IsOperator reports whether the participant is on the operator list.
func (r *Resolver) IsOperator(userID int64) bool {
	_, ok := r.operators[userID]
	return ok
}

// Operators returns the configured operator ids, used for new-order
// notification fan-out.
func (r *Resolver) Operators() []int64 {
	out := make([]int64, 0, len(r.operators))
	for id := range r.operators {
		out = append(out, id)
	}
	return out
}
