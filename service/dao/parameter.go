package dao

// Parameter is a named List filter; criteria.Match interprets the names
// State, Kind and Success against operation snapshots.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a filter matching values[0], or any of values when
// several are given.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
