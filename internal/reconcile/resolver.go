package reconcile

// questionRef is what a question label resolves to
type questionRef struct {
	id   string
	kind *string
}

// Resolver maps free-text question labels to canonical question IDs.
// It is built once per pass and only read afterwards.
type Resolver struct {
	refs map[string]questionRef
}

// BuildResolver records Source 1 native IDs for every label (last seen wins),
// then adds Source 3 native IDs for labels Source 1 never mentioned.
// Source 2 carries no native IDs and is never scanned.
func BuildResolver(first, third []map[string]any) *Resolver {
	r := &Resolver{refs: make(map[string]questionRef)}

	for _, entry := range first {
		for _, q := range firstQuestions(entry, nil) {
			r.refs[labelText(q.label)] = questionRef{id: q.id, kind: q.kind}
		}
	}

	for _, entry := range third {
		for _, q := range thirdQuestions(entry, nil) {
			label := labelText(q.label)
			if _, ok := r.refs[label]; !ok {
				r.refs[label] = questionRef{id: q.id}
			}
		}
	}

	return r
}

// Resolve returns the canonical ID for label, or the label itself when no feed defined one
func (r *Resolver) Resolve(label string) string {
	if r != nil {
		if ref, ok := r.refs[label]; ok {
			return ref.id
		}
	}
	return label
}

// TypeOf returns the Source 1 question type tag for label, if any
func (r *Resolver) TypeOf(label string) *string {
	if r == nil {
		return nil
	}
	return r.refs[label].kind
}

// Len returns the number of known labels
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.refs)
}

func labelText(label *string) string {
	if label == nil {
		return ""
	}
	return *label
}
