package servicedef

import (
	"encoding/json"
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	PathGet  = "/get"
	PathPost = "/post"
)

// EchoResponse is the JSON body returned by the echo service. Each field is kept as an
// arbitrary JSON value, since the service echoes whatever it was given; fields that the
// service did not send are null.
type EchoResponse struct {
	Args    ldvalue.Value `json:"args"`
	Data    ldvalue.Value `json:"data"`
	Files   ldvalue.Value `json:"files"`
	Form    ldvalue.Value `json:"form"`
	Headers ldvalue.Value `json:"headers"`
	JSON    ldvalue.Value `json:"json"`
	URL     string        `json:"url"`
}

// Header returns an echoed request header. The service lower-cases header names.
func (r EchoResponse) Header(lowerCaseName string) (string, bool) {
	v := r.Headers.GetByKey(lowerCaseName)
	if v.Type() != ldvalue.StringType {
		return "", false
	}
	return v.StringValue(), true
}

// StringMap converts an ldvalue object whose properties are all strings back to a map. It
// returns an error if the value is not an object or a property is not a string; repeated
// query keys, for instance, come back as arrays.
func StringMap(v ldvalue.Value) (map[string]string, error) {
	if v.Type() != ldvalue.ObjectType {
		return nil, fmt.Errorf("expected a JSON object but got %s", v.JSONString())
	}
	ret := make(map[string]string, v.Count())
	for _, k := range v.Keys() {
		prop := v.GetByKey(k)
		if prop.Type() != ldvalue.StringType {
			return nil, fmt.Errorf("property %q was not a string: %s", k, prop.JSONString())
		}
		ret[k] = prop.StringValue()
	}
	return ret, nil
}

// ValueOf converts anything that can be marshaled to JSON into an ldvalue.Value.
func ValueOf(v interface{}) (ldvalue.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return ldvalue.Null(), err
	}
	return ldvalue.Parse(data), nil
}
