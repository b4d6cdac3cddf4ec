package digest

import (
	"bytes"
	"encoding/json"

	"thread-digest/internal/model"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders s as block YAML with keys in post_title, post_body, children order.
func MarshalYAML(s model.PostSummary) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON renders s as indented JSON with the same key order as MarshalYAML.
func MarshalJSON(s model.PostSummary) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
