package feature

// Labels tracks a slice of columns and their index locations in an encoded feature vector.
type Labels struct {
	idx    map[string]int
	labels []Column
}

func NewLabels(labels []Column) *Labels {
	idx := make(map[string]int)
	for i := 0; i < len(labels); i++ {
		idx[labels[i].String()] = i
	}
	fl := &Labels{
		labels: labels,
		idx:    idx,
	}
	return fl
}

func (f *Labels) Len() int {
	return len(f.labels)
}

func (f *Labels) Labels() []Column {
	labels := make([]Column, len(f.labels))
	copy(labels, f.labels)
	return labels
}

func (f *Labels) Index(label Column) (int, bool) {
	if idx, exists := f.idx[label.String()]; exists {
		return idx, exists
	}
	return -1, false
}

func (f *Labels) Strings() []string {
	out := make([]string, len(f.labels))
	for i, l := range f.labels {
		out[i] = l.String()
	}
	return out
}
