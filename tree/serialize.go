// Copyright (C) 2026 The depict Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package tree

import (
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/apttools/depict/filter"
	"github.com/apttools/depict/geom"
)

// Factory builds an empty filter.Node for a given XML element name, so
// Load can reconstruct concrete filter types it has no static knowledge
// of. The caller registers one constructor per concrete filter type
// (DataLoad, Range, Spectrum, IonColour, External).
type Factory func(typeName string) (filter.Node, error)

type treeElem struct {
	XMLName  xml.Name   `xml:"filterTree"`
	Checksum string     `xml:"checksum,attr"`
	Root     *nodeElem  `xml:"node"`
}

type nodeElem struct {
	XMLName  xml.Name    `xml:"node"`
	Type     string      `xml:"type,attr"`
	ID       int         `xml:"id,attr"`
	Props    []propElem  `xml:"property"`
	State    string      `xml:"state,omitempty"`
	Children []*nodeElem `xml:"node"`
}

type propElem struct {
	Key   string `xml:"key,attr"`
	Kind  string `xml:"kind,attr"`
	Value string `xml:",chardata"`
}

// Save serializes t as the XML form of spec §6.3: one element per
// filter, holding its property keys and values, with paths stored in
// canonical forward-slash form. A blake2b-256 digest of the node body
// is recorded as an attribute so Load can detect truncated or
// hand-edited files before trying to reconstruct a tree from them.
func Save(w io.Writer, t *Tree) error {
	if t.Root == nil {
		_, err := io.WriteString(w, `<filterTree checksum=""></filterTree>`)
		return err
	}
	body, err := encodeNode(t.Root)
	if err != nil {
		return err
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	h.Write(body)
	sum := hex.EncodeToString(h.Sum(nil))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<filterTree checksum="%s">`, sum)
	buf.Write(body)
	buf.WriteString(`</filterTree>`)
	_, err = w.Write(buf.Bytes())
	return err
}

func encodeNode(n *Node) ([]byte, error) {
	elem, err := nodeToElem(n)
	if err != nil {
		return nil, err
	}
	return xml.MarshalIndent(elem, "", "  ")
}

// nodeToElem flattens a node's scalar Properties into propElems the way
// it always has, then gives the filter a chance to append whatever
// structural state Properties can't express (Range's table, say) as a
// nested <state> blob via Filter.Serialize — spec §6.3's XML-element
// persistence hook.
func nodeToElem(n *Node) (*nodeElem, error) {
	e := &nodeElem{
		Type: fmt.Sprintf("%T", n.Filter),
		ID:   n.ID,
	}
	for _, g := range n.Filter.Properties() {
		for _, p := range g.Properties {
			e.Props = append(e.Props, propFromValue(p.Key, p.Current))
		}
	}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := n.Filter.Serialize(enc); err != nil {
		return nil, fmt.Errorf("tree: node %d serialize: %w", n.ID, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("tree: node %d serialize: %w", n.ID, err)
	}
	e.State = buf.String()
	for _, c := range n.Children {
		ce, err := nodeToElem(c)
		if err != nil {
			return nil, err
		}
		e.Children = append(e.Children, ce)
	}
	return e, nil
}

func propFromValue(key string, v filter.Value) propElem {
	switch v.Kind {
	case filter.ValueBool:
		return propElem{Key: key, Kind: "bool", Value: fmt.Sprintf("%t", v.Bool)}
	case filter.ValueInt:
		return propElem{Key: key, Kind: "int", Value: fmt.Sprintf("%d", v.Int)}
	case filter.ValueFloat:
		return propElem{Key: key, Kind: "float", Value: fmt.Sprintf("%g", v.Float)}
	case filter.ValueColour:
		return propElem{Key: key, Kind: "colour", Value: v.Colour.Hex()}
	default:
		return propElem{Key: key, Kind: "string", Value: canonicalizePath(v.String)}
	}
}

// canonicalizePath rewrites a filesystem path to forward-slash form for
// storage, per spec §6.3.
func canonicalizePath(s string) string {
	if !strings.ContainsRune(s, filepath.Separator) || filepath.Separator == '/' {
		return s
	}
	return filepath.ToSlash(s)
}

// resolvePath converts a stored forward-slash path back to the native
// separator, resolving a leading "./" against stateDir per spec §6.3.
func resolvePath(stateDir, stored string) string {
	native := filepath.FromSlash(stored)
	if strings.HasPrefix(stored, "./") {
		return filepath.Join(stateDir, native)
	}
	return native
}

// Load parses the XML form Save produces, using factory to construct
// each node's concrete filter.Node by its recorded type name, and
// rebuilds parent/child links and stable IDs.
func Load(r io.Reader, factory Factory) (*Tree, error) {
	var elem treeElem
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	if err := xml.Unmarshal(data, &elem); err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	if elem.Checksum != "" {
		start := bytes.Index(data, []byte("<filterTree"))
		end := bytes.LastIndex(data, []byte("</filterTree>"))
		gt := -1
		if start >= 0 {
			gt = bytes.IndexByte(data[start:], '>')
		}
		if gt < 0 || end < start+gt+1 {
			return nil, fmt.Errorf("tree: malformed filterTree document")
		}
		sum := blake2b.Sum256(data[start+gt+1 : end])
		if hex.EncodeToString(sum[:]) != elem.Checksum {
			return nil, fmt.Errorf("tree: checksum mismatch: document truncated or edited")
		}
	}
	if elem.Root == nil {
		return &Tree{}, nil
	}
	root, err := elemToNode(elem.Root, factory)
	if err != nil {
		return nil, err
	}
	t := &Tree{Root: root}
	t.RebuildIDs()
	return t, nil
}

func elemToNode(e *nodeElem, factory Factory) (*Node, error) {
	f, err := factory(e.Type)
	if err != nil {
		return nil, fmt.Errorf("tree: node %d: %w", e.ID, err)
	}
	// Deserialize runs before the Properties replay below so a filter
	// whose SetProperty needs structural state Properties alone can't
	// rebuild (Range's table) already has it by the time those calls
	// arrive; with it restored, replaying range.N.*/ion.N.* just
	// reasserts values Deserialize already set.
	if e.State != "" {
		dec := xml.NewDecoder(strings.NewReader(e.State))
		if err := f.Deserialize(dec); err != nil {
			return nil, fmt.Errorf("tree: node %d deserialize: %w", e.ID, err)
		}
	}
	for _, p := range e.Props {
		v, err := valueFromProp(p)
		if err != nil {
			return nil, fmt.Errorf("tree: node %d property %q: %w", e.ID, p.Key, err)
		}
		if accepted, _ := f.SetProperty(p.Key, v); !accepted {
			return nil, fmt.Errorf("tree: node %d rejected persisted property %q", e.ID, p.Key)
		}
	}
	n := NewNode(f)
	for _, ce := range e.Children {
		child, err := elemToNode(ce, factory)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func valueFromProp(p propElem) (filter.Value, error) {
	switch p.Kind {
	case "bool":
		return filter.Bool(p.Value == "true"), nil
	case "int":
		var i int64
		if _, err := fmt.Sscanf(p.Value, "%d", &i); err != nil {
			return filter.Value{}, err
		}
		return filter.Int(i), nil
	case "float":
		var f float64
		if _, err := fmt.Sscanf(p.Value, "%g", &f); err != nil {
			return filter.Value{}, err
		}
		return filter.Float(f), nil
	case "colour":
		c, err := geom.ParseHex(p.Value)
		if err != nil {
			return filter.Value{}, err
		}
		return filter.Col(c), nil
	default:
		return filter.Str(p.Value), nil
	}
}

// joinCanonical is a small helper kept beside the path-canonicalization
// functions above: it joins separate directory/name components into one
// stored forward-slash path. It is unexported and has no caller.
func joinCanonical(dir, name string) string {
	return path.Join(filepath.ToSlash(dir), name)
}
