package cursor

// Pagination describes one page of a result set
type Pagination struct {
	Limit      int    `json:"limit"`
	NextCursor string `json:"next_cursor,omitempty"`
	PrevCursor string `json:"prev_cursor,omitempty"`
	TotalCount int    `json:"total_count"`
}

// Paginate builds the pagination block for the page starting at offset
func Paginate(total, offset, limit int, fingerprint string) Pagination {
	p := Pagination{Limit: limit, TotalCount: total}
	if limit <= 0 {
		return p
	}

	if next := offset + limit; next < total {
		p.NextCursor = Encode(Cursor{Offset: next, Fingerprint: fingerprint})
	}
	if offset > 0 {
		p.PrevCursor = Encode(Cursor{Offset: max(0, offset-limit), Fingerprint: fingerprint})
	}

	return p
}

// Page returns items[offset:offset+limit], clamped to the slice bounds
func Page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) || limit <= 0 {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}
