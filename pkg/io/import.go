package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/alluvial/pkg/dag"
	apperr "github.com/matzehuels/alluvial/pkg/errors"
)

// Format is an input document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. "yml" is accepted as YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", apperr.New(apperr.ErrCodeInvalidFormat, "unknown input format %q (want json or yaml)", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", apperr.New(apperr.ErrCodeInvalidFormat, "cannot detect format of %s: no extension", path)
	}
	return ParseFormat(ext)
}

// Input is a diagram document as read from a file or request body.
type Input struct {
	Title  string   `json:"title,omitempty" yaml:"title,omitempty"`
	Layers []string `json:"layers" yaml:"layers"`
	Nodes  []Node   `json:"nodes" yaml:"nodes"`
	Links  []Link   `json:"links" yaml:"links"`
}

// Node is one input node.
type Node struct {
	ID          string       `json:"id" yaml:"id"`
	Label       string       `json:"label,omitempty" yaml:"label,omitempty"`
	Value       float64      `json:"value" yaml:"value"`
	Layer       int          `json:"layer" yaml:"layer"`
	Category    string       `json:"category,omitempty" yaml:"category,omitempty"`
	HeightScale float64      `json:"height_scale,omitempty" yaml:"height_scale,omitempty"`
	Nudge       float64      `json:"nudge,omitempty" yaml:"nudge,omitempty"`
	Meta        dag.Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Link is one input flow.
type Link struct {
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
	Value  float64 `json:"value" yaml:"value"`
}

// ErrEmptyInput is returned by [ReadInput] when the document is empty.
var ErrEmptyInput = errors.New("empty input")

// ReadInput decodes an input document from r.
//
// ReadInput only checks the document's syntax. Use [BuildGraph] to turn the
// result into a graph. ReadInput does not close r.
func ReadInput(r io.Reader, f Format) (*Input, error) {
	var in Input
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&in)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&in)
	default:
		return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unknown input format %q", f)
	}
	if errors.Is(err, io.EOF) {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, ErrEmptyInput, "decode %s", f)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode %s", f)
	}
	return &in, nil
}

// ImportFile reads an input document from path. The format is detected from
// the file extension.
func ImportFile(path string) (*Input, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "input file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return ReadInput(file, f)
}
