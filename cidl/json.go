package cidl

// MarshalJSON renders an include tree as a plain nested JSON object, e.g.
// {"books": {"author": {}}}, matching the wire shape data sources and
// upsert include-tree parameters use.
func (t *IncludeTree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	return MarshalOrderedMap(t.Children)
}

// UnmarshalJSON parses a nested JSON object into an include tree,
// preserving declaration order (§6: ordered mappings round-trip order).
func (t *IncludeTree) UnmarshalJSON(data []byte) error {
	children, err := UnmarshalOrderedMap[*IncludeTree](data)
	if err != nil {
		return err
	}
	t.Children = children
	return nil
}
