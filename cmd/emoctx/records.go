package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hrygo/emocontext/plugin/ai/memory"
)

// recordsFile is the document shape accepted by import. A bare list of
// records is accepted as well.
type recordsFile struct {
	Records []memory.Record `json:"records" yaml:"records"`
}

func readRecordsFile(path string) ([]memory.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSONRecords(data)
	case ".yaml", ".yml":
		return decodeYAMLRecords(data)
	default:
		return nil, errors.Errorf("unsupported records file %q: expected .json, .yaml or .yml", path)
	}
}

func decodeJSONRecords(data []byte) ([]memory.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var records []memory.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, errors.Wrap(err, "failed to decode records")
		}
		return records, nil
	}
	var doc recordsFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode records")
	}
	return doc.Records, nil
}

func decodeYAMLRecords(data []byte) ([]memory.Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, errors.Wrap(err, "failed to decode records")
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var records []memory.Record
		if err := root.Decode(&records); err != nil {
			return nil, errors.Wrap(err, "failed to decode records")
		}
		return records, nil
	}
	var doc recordsFile
	if err := root.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode records")
	}
	return doc.Records, nil
}
