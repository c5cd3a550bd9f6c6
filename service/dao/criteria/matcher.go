package criteria

import (
	"strconv"

	"github.com/viant/oploader/model/operation"
	"github.com/viant/oploader/service/dao"
)

// Parameter names understood by Match.
const (
	State   = "State"
	Kind    = "Kind"
	Success = "Success"
)

// Match reports whether info satisfies every parameter. Unknown parameter
// names are ignored.
func Match(info *operation.Info, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		var actual string
		switch parameter.Name {
		case State:
			actual = info.State.String()
		case Kind:
			actual = info.Kind.String()
		case Success:
			actual = strconv.FormatBool(info.Success)
		default:
			continue
		}
		if !matches(actual, parameter.Value) {
			return false
		}
	}
	return true
}

func matches(actual string, expected interface{}) bool {
	switch value := expected.(type) {
	case string:
		return actual == value
	case []string:
		for _, candidate := range value {
			if actual == candidate {
				return true
			}
		}
		return false
	}
	return true
}
