package kvstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrSyntax is returned when a stream is not a valid document.
var ErrSyntax = errors.New("kvstore: invalid document")

// FromStream parses a document. The input is YAML; JSON documents are
// accepted as well since JSON is a subset of YAML.
func FromStream(r io.Reader) (*Store, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return New(), nil
		}
		node = node.Content[0]
	}
	return fromNode(node, "")
}

// FromBytes parses a document from memory.
func FromBytes(data []byte) (*Store, error) {
	return FromStream(bytes.NewReader(data))
}

// FromResources loads a bundled document by id from a resource pack.
// The id may omit the ".yaml" extension.
func FromResources(pack fs.FS, id string) (*Store, error) {
	name := id
	if path.Ext(name) == "" {
		name += ".yaml"
	}
	f, err := pack.Open(name)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open resource %s: %w", id, err)
	}
	defer f.Close()

	s, err := FromStream(f)
	if err != nil {
		return nil, fmt.Errorf("kvstore: resource %s: %w", id, err)
	}
	return s, nil
}

func fromNode(n *yaml.Node, where string) (*Store, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s is not a mapping (line %d)", ErrSyntax, describe(where), n.Line)
	}

	s := New()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val := n.Content[i+1]
		if val.Kind == yaml.AliasNode {
			val = val.Alias
		}
		at := join(where, key)

		switch val.Kind {
		case yaml.MappingNode:
			sub, err := fromNode(val, at)
			if err != nil {
				return nil, err
			}
			s.put(key, sub)
		case yaml.SequenceNode:
			list := make([]*Store, 0, len(val.Content))
			for j, item := range val.Content {
				sub, err := fromNode(item, fmt.Sprintf("%s[%d]", at, j))
				if err != nil {
					return nil, err
				}
				list = append(list, sub)
			}
			s.put(key, list)
		case yaml.ScalarNode:
			v, ok, err := scalar(val)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrSyntax, at, err)
			}
			if ok {
				s.put(key, v)
			}
		default:
			return nil, fmt.Errorf("%w: unsupported node at %s", ErrSyntax, at)
		}
	}
	return s, nil
}

// scalar decodes a scalar node. Null values report ok=false and are skipped.
func scalar(n *yaml.Node) (any, bool, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, false, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, false, err
		}
		return i, true, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, false, err
		}
		return f, true, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, false, err
		}
		return b, true, nil
	default:
		return n.Value, true, nil
	}
}

// Encode writes the document as YAML, keeping key order.
func (s *Store) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.node()); err != nil {
		return fmt.Errorf("kvstore: encode: %w", err)
	}
	return enc.Close()
}

// Marshal returns the YAML form of the document.
func (s *Store) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Store) node() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range s.keys {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		n.Content = append(n.Content, key, valueNode(s.values[k]))
	}
	return n
}

func valueNode(v any) *yaml.Node {
	switch val := v.(type) {
	case *Store:
		return val.node()
	case []*Store:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			seq.Content = append(seq.Content, item.node())
		}
		if len(val) == 0 {
			seq.Style = yaml.FlowStyle
		}
		return seq
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(val, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(val)}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(val)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: val}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// formatFloat keeps a decimal point so the value reads back as a float.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	str := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(str, ".eEn") {
		str += ".0"
	}
	return str
}

func join(where, key string) string {
	if where == "" {
		return key
	}
	return where + "." + key
}

func describe(where string) string {
	if where == "" {
		return "document root"
	}
	return where
}
