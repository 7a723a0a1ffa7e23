package catalog

// Item is a single entry of a list
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List is a named collection of items
type List struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Store serves the fixed, in-memory lists
type Store struct {
	lists []List
}

// NewStore creates a store over the given lists
func NewStore(lists []List) *Store {
	return &Store{lists: lists}
}

// Default returns a store over the built-in shows and movies lists
func Default() *Store {
	return NewStore([]List{
		{ID: "1", Name: "TV Shows", Items: shows},
		{ID: "2", Name: "Movies", Items: movies},
	})
}

// Lists returns every list in declaration order
func (s *Store) Lists() []List {
	return s.lists
}

// List returns the list with the given id
func (s *Store) List(id string) (List, bool) {
	for _, l := range s.lists {
		if l.ID == id {
			return l, true
		}
	}
	return List{}, false
}

var shows = []Item{
	{ID: "s1", Name: "Severance"},
	{ID: "s2", Name: "The Bear"},
	{ID: "s3", Name: "Slow Horses"},
	{ID: "s4", Name: "Andor"},
}

var movies = []Item{
	{ID: "m1", Name: "Dune: Part Two"},
	{ID: "m2", Name: "Past Lives"},
	{ID: "m3", Name: "Arrival"},
}
