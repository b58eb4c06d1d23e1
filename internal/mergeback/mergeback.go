// Package mergeback reads a source file previously emitted with tagging
// enabled, recomputes every block CRC under the emitter's normalization
// rule, and folds edited code blocks and callbacks back into the design
// tree. Structural blocks are never merged; their divergence is only
// reported.
package mergeback

import (
	"bytes"
	"os"

	"veld/internal/design"
	"veld/internal/emit"
	"veld/internal/project"
)

// Task selects the merge-back behavior.
type Task int

const (
	// Check classifies divergences without mutating anything.
	Check Task = iota
	// Go applies safe edits regardless of conflicts.
	Go
	// GoSafe refuses to apply anything when a structural divergence or tag
	// error is present.
	GoSafe
)

// Result bits returned by Check.
const (
	BitStructure   = 1 << 0
	BitCode        = 1 << 1
	BitCallback    = 1 << 2
	BitUIDNotFound = 1 << 3
)

// Counters is the classification of one scan. The interactive shell renders
// these before asking the user to promote the run to Go.
type Counters struct {
	ChangedCode      int
	ChangedCallback  int
	ChangedStructure int
	UIDNotFound      int
	TagError         bool
	ErrLine          int
}

// Clean reports whether the scan found no divergence at all.
func (c Counters) Clean() bool {
	return !c.TagError && c.ChangedCode == 0 && c.ChangedCallback == 0 &&
		c.ChangedStructure == 0 && c.UIDNotFound == 0
}

var tagMarker = []byte("//~fl~")

// MergeBack runs task against the file at path. Returns -1 on a malformed
// tag, otherwise: for Check a bitmask of the Bit* values; for Go/GoSafe 1
// if any change was applied and 0 if none. GoSafe returns -1 and applies
// nothing when a structural divergence is present. The error is non-nil
// only for I/O failures.
func MergeBack(tree *design.Tree, prj *project.Settings, path string, task Task) (int, error) {
	if !prj.WriteMergebackData {
		return 0, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	switch task {
	case Check:
		c := scan(tree, data, false)
		if c.TagError {
			return -1, nil
		}
		ret := 0
		if c.ChangedStructure > 0 {
			ret |= BitStructure
		}
		if c.ChangedCode > 0 {
			ret |= BitCode
		}
		if c.ChangedCallback > 0 {
			ret |= BitCallback
		}
		if c.UIDNotFound > 0 {
			ret |= BitUIDNotFound
		}
		return ret, nil
	case Go:
		c := scan(tree, data, true)
		if c.TagError {
			return -1, nil
		}
		if c.applied {
			return 1, nil
		}
		return 0, nil
	case GoSafe:
		c := scan(tree, data, false)
		if c.TagError || c.ChangedStructure > 0 {
			return -1, nil
		}
		if c.ChangedCode == 0 && c.ChangedCallback == 0 {
			return 0, nil
		}
		c = scan(tree, data, true)
		if c.applied {
			return 1, nil
		}
		return 0, nil
	}
	return 0, nil
}

// Classify scans path without mutating the tree and returns the raw
// counters, for callers that present them to the user.
func Classify(tree *design.Tree, prj *project.Settings, path string) (Counters, error) {
	if !prj.WriteMergebackData {
		return Counters{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Counters{}, err
	}
	return scan(tree, data, false).Counters, nil
}

// Interactive classifies path and, when something is mergeable, asks prompt
// whether to promote to Go. Structural-only divergence cannot be merged and
// returns -1 like a conflict. Returns 1 when changes were merged.
func Interactive(tree *design.Tree, prj *project.Settings, path string, prompt func(Counters) bool) (Counters, int, error) {
	if !prj.WriteMergebackData {
		return Counters{}, 0, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Counters{}, 0, err
	}
	c := scan(tree, data, false).Counters
	if c.TagError {
		return c, -1, nil
	}
	if c.ChangedCode == 0 && c.ChangedCallback == 0 && c.ChangedStructure == 0 {
		return c, 0, nil
	}
	if c.ChangedStructure > 0 && c.ChangedCode == 0 && c.ChangedCallback == 0 {
		return c, -1, nil
	}
	if prompt == nil || !prompt(c) {
		return c, 0, nil
	}
	r := scan(tree, data, true)
	if r.TagError {
		return c, -1, nil
	}
	if r.applied {
		return c, 1, nil
	}
	return c, 0, nil
}

type scanResult struct {
	Counters
	applied bool
}

// scan walks data line by line, accumulating the normalized CRC of each
// block and comparing it to the CRC stored in the closing tag. With apply
// set, diverging code and callback blocks are written back into their
// nodes; otherwise divergences are only counted.
func scan(tree *design.Tree, data []byte, apply bool) scanResult {
	var res scanResult
	crc := emit.NewNormCRC()
	blockStart := 0
	blockEnd := 0
	lineNo := 0
	for pos := 0; pos < len(data); {
		nl := bytes.IndexByte(data[pos:], '\n')
		var line []byte
		var next int
		if nl < 0 {
			line = data[pos:]
			next = len(data)
		} else {
			line = data[pos : pos+nl+1]
			next = pos + nl + 1
		}
		lineNo++
		if k := bytes.Index(line, tagMarker); k < 0 {
			crc.Add(line)
			blockEnd = next
		} else {
			kind, uid, sum, ok := parseTag(line[k:])
			if !ok {
				res.TagError = true
				res.ErrLine = lineNo
				return res
			}
			if crc.Sum32() != sum {
				block := []byte{}
				if blockEnd > blockStart {
					block = data[blockStart:blockEnd]
				}
				if apply {
					res.applyEdit(tree, kind, uid, block)
				} else {
					res.count(tree, kind, uid)
				}
			}
			crc.Reset()
			blockStart = next
		}
		pos = next
	}
	return res
}

func (r *scanResult) applyEdit(tree *design.Tree, kind int, uid uint16, block []byte) {
	switch kind {
	case design.TagCode:
		if n := tree.FindByUID(uid); n != nil && n.Is(design.KindCode) {
			n.SetBody(Unindent(block))
			r.applied = true
		}
	case design.TagMenuCallback, design.TagWidgetCallback:
		if n := tree.FindByUID(uid); n != nil && n.IsTrueWidget() {
			n.SetCallback(Unindent(block))
			r.applied = true
		}
	default:
		// structural edits cannot be merged back
	}
}

func (r *scanResult) count(tree *design.Tree, kind int, uid uint16) {
	findNode := false
	switch kind {
	case design.TagGeneric:
		r.ChangedStructure++
	case design.TagCode:
		r.ChangedCode++
		findNode = true
	case design.TagMenuCallback, design.TagWidgetCallback:
		r.ChangedCallback++
		findNode = true
	}
	if findNode && tree.FindByUID(uid) == nil {
		r.UIDNotFound++
	}
}
