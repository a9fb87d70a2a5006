package cidl

// IncludeTree is a recursive, ordered name -> subtree mapping selecting
// which navigation properties (and terminal KV/R2 artifacts) to follow
// when materializing a model.
type IncludeTree struct {
	Children *OrderedMap[*IncludeTree] `json:"-"`
}

// NewIncludeTree constructs an empty tree.
func NewIncludeTree() *IncludeTree {
	return &IncludeTree{Children: NewOrderedMap[*IncludeTree]()}
}

// Get looks up a named child, returning (nil, false) if absent.
func (t *IncludeTree) Get(name string) (*IncludeTree, bool) {
	if t == nil || t.Children == nil {
		return nil, false
	}
	return t.Children.Get(name)
}

// Set attaches/replaces a named child.
func (t *IncludeTree) Set(name string, child *IncludeTree) {
	if t.Children == nil {
		t.Children = NewOrderedMap[*IncludeTree]()
	}
	t.Children.Set(name, child)
}

// Names returns the child names in declared order.
func (t *IncludeTree) Names() []string {
	if t == nil {
		return nil
	}
	return Keys(t.Children)
}

// Len reports the number of direct children.
func (t *IncludeTree) Len() int {
	if t == nil || t.Children == nil {
		return 0
	}
	return t.Children.Len()
}

// DataSource is a named include tree attached to a model.
type DataSource struct {
	Name      string       `json:"name"`
	Tree      *IncludeTree `json:"tree"`
	IsPrivate bool         `json:"is_private"`
}
