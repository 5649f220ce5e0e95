package util

import (
	"bytes"
	"encoding/json"

	"github.com/ghodss/yaml"
)

// UnmarshalYAMLStrict decodes YAML into the argument object, failing on fields that the
// object doesn't declare.
func UnmarshalYAMLStrict(y []byte, o interface{}) error {
	jsonBytes, err := yaml.YAMLToJSON(y)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(o)
}
