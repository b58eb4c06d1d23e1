package design

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the document format changes.
const docSchemaVersion uint16 = 1

// ErrSchema is returned when a document was written by an incompatible
// version of the tool.
var ErrSchema = errors.New("design document schema mismatch")

// docNode is the wire form of one tree node. Levels are stored explicitly;
// the Next/Prev chain is rebuilt on load.
type docNode struct {
	Kind       uint8  `msgpack:"kind"`
	Level      int    `msgpack:"level"`
	UID        uint16 `msgpack:"uid"`
	Name       string `msgpack:"name,omitempty"`
	Label      string `msgpack:"label,omitempty"`
	Tooltip    string `msgpack:"tooltip,omitempty"`
	Callback   string `msgpack:"callback,omitempty"`
	Code       string `msgpack:"code,omitempty"`
	ReturnType string `msgpack:"return_type,omitempty"`
	Base       string `msgpack:"base,omitempty"`
	CtorArgs   string `msgpack:"ctor_args,omitempty"`
	Data       []byte `msgpack:"data,omitempty"`
	Public     int    `msgpack:"public,omitempty"`
	InSource   bool   `msgpack:"in_source,omitempty"`
	InHeader   bool   `msgpack:"in_header,omitempty"`
}

type document struct {
	Schema uint16    `msgpack:"schema"`
	Name   string    `msgpack:"name,omitempty"`
	Nodes  []docNode `msgpack:"nodes"`
}

// Load reads a .veld design document and rebuilds the node tree.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: failed to decode design document: %w", path, err)
	}
	if doc.Schema != docSchemaVersion {
		return nil, fmt.Errorf("%s: %w: got %d, want %d", path, ErrSchema, doc.Schema, docSchemaVersion)
	}
	t := NewTree()
	for i := range doc.Nodes {
		d := &doc.Nodes[i]
		t.Append(&Node{
			Kind:       Kind(d.Kind),
			Level:      d.Level,
			UID:        d.UID,
			Name:       d.Name,
			Label:      d.Label,
			Tooltip:    d.Tooltip,
			Callback:   d.Callback,
			Code:       d.Code,
			ReturnType: d.ReturnType,
			Base:       d.Base,
			CtorArgs:   d.CtorArgs,
			Data:       d.Data,
			Public:     d.Public,
			InSource:   d.InSource,
			InHeader:   d.InHeader,
		})
	}
	if err := t.EnsureUIDs(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Save writes the tree as a .veld design document. The write goes through a
// temp file in the same directory so a crash never truncates the document.
func Save(path string, t *Tree) error {
	if err := t.EnsureUIDs(); err != nil {
		return err
	}
	doc := document{Schema: docSchemaVersion, Nodes: make([]docNode, 0, t.Len())}
	for n := t.First(); n != nil; n = n.Next() {
		doc.Nodes = append(doc.Nodes, docNode{
			Kind:       uint8(n.Kind),
			Level:      n.Level,
			UID:        n.UID,
			Name:       n.Name,
			Label:      n.Label,
			Tooltip:    n.Tooltip,
			Callback:   n.Callback,
			Code:       n.Code,
			ReturnType: n.ReturnType,
			Base:       n.Base,
			CtorArgs:   n.CtorArgs,
			Data:       n.Data,
			Public:     n.Public,
			InSource:   n.InSource,
			InHeader:   n.InHeader,
		})
	}
	data, err := msgpack.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode design document: %w", err)
	}
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
