package slint

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"

	"github.com/ghodss/yaml"
)

// Data is a generic configuration object for compiler options (style,
// include paths, optimization switches). It reads JSON or YAML files.
type Data struct {
	value interface{}
}

func NewData() *Data {
	return &Data{}
}

func (data *Data) String() string {
	return Pretty(data.value)
}

func DataFromFile(path string) (*Data, error) {
	var data *Data
	raw, err := ioutil.ReadFile(path)
	if err == nil {
		ext := filepath.Ext(path)
		var value map[string]interface{}
		if ext == ".yaml" || ext == ".yml" {
			err = yaml.Unmarshal(raw, &value)
		} else {
			err = json.Unmarshal(raw, &value)
		}
		if err == nil {
			data = &Data{value: value}
		}
	}
	return data, err
}

func (data *Data) Put(key string, value interface{}) {
	if data.value == nil {
		data.value = make(map[string]interface{})
	}
	m := data.AsMap()
	if m != nil {
		m[key] = value
	}
}

func (data *Data) AsMap() map[string]interface{} {
	if data.value != nil {
		if m, ok := data.value.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

func (data *Data) Get(keys ...string) interface{} {
	return data.get(keys)
}

func (data *Data) get(keys []string) interface{} {
	m := data.AsMap()
	for i, key := range keys {
		if m == nil {
			return nil
		}
		v, ok := m[key]
		if !ok {
			return nil
		}
		if i == len(keys)-1 {
			return v
		}
		m, _ = v.(map[string]interface{})
	}
	return nil
}

func (data *Data) Has(keys ...string) bool {
	return data.get(keys) != nil
}

func (data *Data) GetString(keys ...string) string {
	if s, ok := data.get(keys).(string); ok {
		return s
	}
	return ""
}

func (data *Data) GetBool(keys ...string) bool {
	if b, ok := data.get(keys).(bool); ok {
		return b
	}
	return false
}

func (data *Data) GetInt(keys ...string) int {
	switch n := data.get(keys).(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func (data *Data) GetStrings(keys ...string) []string {
	var result []string
	if a, ok := data.get(keys).([]interface{}); ok {
		for _, v := range a {
			if s, ok := v.(string); ok {
				result = append(result, s)
			}
		}
	}
	return result
}
