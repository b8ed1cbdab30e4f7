package manifest

// Selection narrows the queue before dependencies are added.
type Selection struct {
	Names  []string // Task names or signatures; empty selects default tasks
	Python []string // Interpreter versions to keep
	Tags   []string // Keep tasks carrying any of these tags
	NoDeps bool     // Do not add required tasks to the queue
}

// Select applies sel to the queue and, unless NoDeps is set, adds the
// dependency closure. Filters apply in the order names, python, tags.
func (m *Manifest) Select(sel Selection) error {
	switch {
	case len(sel.Names) > 0:
		if err := m.FilterByName(sel.Names); err != nil {
			return err
		}
	case len(sel.Tags) == 0:
		m.FilterDefault()
	}
	if len(sel.Python) > 0 {
		m.FilterByPython(sel.Python)
	}
	if len(sel.Tags) > 0 {
		m.FilterByTags(sel.Tags)
	}
	if sel.NoDeps {
		return nil
	}
	return m.AddDependencies()
}
