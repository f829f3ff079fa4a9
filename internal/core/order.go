package core

// Reorder moves the row identified by moved to the position currently held
// by target, shifting the rows in between by one. It returns a new slice and
// never modifies order.
//
// Both identities are resolved against the full order passed in, never a
// page slice. If either is missing, or moved == target, order is returned
// unchanged and applied is false.
func Reorder(order []Row, moved, target string) (result []Row, applied bool) {
	if moved == target {
		return order, false
	}

	from := indexOf(order, moved)
	to := indexOf(order, target)
	if from < 0 || to < 0 {
		return order, false
	}

	result = make([]Row, 0, len(order))
	result = append(result, order[:from]...)
	result = append(result, order[from+1:]...)

	// Insert at the target index of the list without the moved row.
	result = append(result, Row{})
	copy(result[to+1:], result[to:])
	result[to] = order[from]

	return result, true
}

func indexOf(order []Row, identity string) int {
	for i, row := range order {
		if row.Identity == identity {
			return i
		}
	}
	return -1
}

// OrderStore owns the canonical ordered row list of one view.
// Rows are only ever permuted: never added, removed, or substituted.
type OrderStore struct {
	rows []Row
}

// NewOrderStore copies rows into a new store in insertion order.
func NewOrderStore(rows []Row) *OrderStore {
	owned := make([]Row, len(rows))
	copy(owned, rows)
	return &OrderStore{rows: owned}
}

// Rows returns the full current order. Callers must not modify it.
func (s *OrderStore) Rows() []Row {
	return s.rows
}

// Len returns the number of rows.
func (s *OrderStore) Len() int {
	return len(s.rows)
}

// Contains reports whether a row with identity exists.
func (s *OrderStore) Contains(identity string) bool {
	return indexOf(s.rows, identity) >= 0
}

// Move applies Reorder to the stored order and reports whether it changed.
func (s *OrderStore) Move(moved, target string) bool {
	next, applied := Reorder(s.rows, moved, target)
	if applied {
		s.rows = next
	}
	return applied
}

// Identities returns the identities in current order.
func (s *OrderStore) Identities() []string {
	ids := make([]string, len(s.rows))
	for i, row := range s.rows {
		ids[i] = row.Identity
	}
	return ids
}

// Restore rearranges the store to follow identities. It only succeeds when
// identities is an exact permutation of the stored rows; otherwise the order
// is left untouched and false is returned.
func (s *OrderStore) Restore(identities []string) bool {
	if len(identities) != len(s.rows) {
		return false
	}

	byID := make(map[string]Row, len(s.rows))
	for _, row := range s.rows {
		byID[row.Identity] = row
	}

	next := make([]Row, 0, len(identities))
	for _, id := range identities {
		row, ok := byID[id]
		if !ok {
			return false
		}
		delete(byID, id)
		next = append(next, row)
	}

	s.rows = next
	return true
}
