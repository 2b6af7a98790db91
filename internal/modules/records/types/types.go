package types

// Record is one daily power reading.
type Record struct {
	ID      string  `json:"id"`
	Date    string  `json:"date"`
	Reading float64 `json:"reading"`
}

// Collection is the full ordered record set, persisted as one unit.
type Collection []Record

// Find returns the index of the record with id, or -1.
func (c Collection) Find(id string) int {
	for i, r := range c {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Without returns a copy of c with the element at i removed.
func (c Collection) Without(i int) Collection {
	out := make(Collection, 0, len(c)-1)
	out = append(out, c[:i]...)
	return append(out, c[i+1:]...)
}

// OrEmpty keeps an empty collection encoding as [] rather than null.
func (c Collection) OrEmpty() Collection {
	if c == nil {
		return Collection{}
	}
	return c
}

// ListResponse is the envelope for GET /records.
type ListResponse struct {
	Items Collection `json:"items"`
}
