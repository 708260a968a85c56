package extract

import (
	"encoding/json"
	"math"

	"github.com/fwojciec/pulse"
	"github.com/tidwall/gjson"
)

// Shape records where in a model response the module list was found.
type Shape int

const (
	// ShapeNoList means no list was found; the result is empty.
	ShapeNoList Shape = iota
	// ShapeModules means the response was an object with a list under "modules".
	ShapeModules
	// ShapeFirstList means the list was the first list-valued field of the object.
	ShapeFirstList
	// ShapeTopLevelList means the response itself was a list.
	ShapeTopLevelList
)

func (s Shape) String() string {
	switch s {
	case ShapeModules:
		return "modules"
	case ShapeFirstList:
		return "first-list"
	case ShapeTopLevelList:
		return "top-level-list"
	default:
		return "no-list"
	}
}

// ModulesKey is the object key the extraction schema asks the model to use.
const ModulesKey = "modules"

// Decoded is a normalized model response.
type Decoded struct {
	Shape Shape

	// Key is the object field the list came from, for ShapeModules and
	// ShapeFirstList.
	Key string

	// Modules is never nil. Elements of the located list that are not JSON
	// objects are dropped.
	Modules []pulse.Module
}

// Decode normalizes a model response into a module list.
//
// The list is located by precedence: a list under "modules", then the first
// list-valued field in field order, then a top-level list. Any other valid
// JSON yields ShapeNoList. Invalid JSON returns the decoder's error.
func Decode(response string) (*Decoded, error) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, err
	}

	root := gjson.Parse(response)
	switch {
	case root.IsObject():
		keys, fields := objectFields(root)
		if v, ok := fields[ModulesKey]; ok && v.IsArray() {
			return &Decoded{Shape: ShapeModules, Key: ModulesKey, Modules: decodeList(v)}, nil
		}
		for _, k := range keys {
			if v := fields[k]; v.IsArray() {
				return &Decoded{Shape: ShapeFirstList, Key: k, Modules: decodeList(v)}, nil
			}
		}
	case root.IsArray():
		return &Decoded{Shape: ShapeTopLevelList, Modules: decodeList(root)}, nil
	}
	return &Decoded{Shape: ShapeNoList, Modules: []pulse.Module{}}, nil
}

// objectFields returns an object's keys in order of first appearance and
// each key's last value.
func objectFields(obj gjson.Result) ([]string, map[string]gjson.Result) {
	var keys []string
	fields := make(map[string]gjson.Result)
	obj.ForEach(func(key, value gjson.Result) bool {
		if _, seen := fields[key.String()]; !seen {
			keys = append(keys, key.String())
		}
		fields[key.String()] = value
		return true
	})
	return keys, fields
}

func decodeList(list gjson.Result) []pulse.Module {
	modules := []pulse.Module{}
	list.ForEach(func(_, elem gjson.Result) bool {
		if elem.IsObject() {
			modules = append(modules, decodeModule(elem))
		}
		return true
	})
	return modules
}

// decodeModule reads a module object permissively: fields of the wrong
// type are left empty, and a confidence that is not a finite number is
// left absent.
func decodeModule(obj gjson.Result) pulse.Module {
	_, fields := objectFields(obj)
	m := pulse.Module{Submodules: map[string]string{}}

	if v := fields["module"]; v.Type == gjson.String {
		m.Name = v.Str
	}
	if v := fields["Description"]; v.Type == gjson.String {
		m.Description = v.Str
	}
	if v := fields["Submodules"]; v.IsObject() {
		_, subs := objectFields(v)
		for name, desc := range subs {
			if desc.Type == gjson.String {
				m.Submodules[name] = desc.Str
			} else {
				m.Submodules[name] = desc.Raw
			}
		}
	}
	if v := fields["confidence_score"]; v.Type == gjson.Number && !math.IsInf(v.Num, 0) && !math.IsNaN(v.Num) {
		f := v.Num
		m.Confidence = &f
	}
	return m
}
