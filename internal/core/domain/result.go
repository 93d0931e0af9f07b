package domain

// ExecResult is the outcome of a statement that does not return rows.
type ExecResult struct {
	RowsAffected int64
	LastInsertID int64
}

// Result is the outcome of one dispatched query. Only the field matching
// Op is set.
type Result struct {
	Op Op

	// Rows is set for OpFetchAll.
	Rows RowSet

	// Row is set for OpFetchOne.
	Row Row

	// Value is set for OpFetchScalar.
	Value any

	// RowsAffected is set for OpMutate.
	RowsAffected int64

	// LastInsertID is set for OpMutateReturningID.
	LastInsertID int64
}

// Any returns the op-specific payload of the result.
func (r Result) Any() any {
	switch r.Op {
	case OpFetchAll:
		return r.Rows
	case OpFetchOne:
		return r.Row
	case OpFetchScalar:
		return r.Value
	case OpMutate:
		return r.RowsAffected
	case OpMutateReturningID:
		return r.LastInsertID
	default:
		return nil
	}
}
