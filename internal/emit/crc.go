package emit

import "hash/crc32"

// NormCRC accumulates a CRC32 (IEEE polynomial) over a normalized byte
// stream: carriage returns are dropped, and whitespace at the start of a
// line is skipped up to the first non-whitespace byte. Emission and
// merge-back share this single definition, which is what makes a reread of
// an unchanged file reproduce the CRCs stored in its tags.
type NormCRC struct {
	sum       uint32
	lineStart bool
}

// NewNormCRC returns an accumulator positioned at the start of a line.
func NewNormCRC() NormCRC { return NormCRC{lineStart: true} }

// Reset clears the checksum and marks the position as a line start.
func (c *NormCRC) Reset() {
	c.sum = 0
	c.lineStart = true
}

// Sum32 returns the checksum of everything added since the last reset.
func (c *NormCRC) Sum32() uint32 { return c.sum }

// AddString is Add for string input.
func (c *NormCRC) AddString(s string) { c.Add([]byte(s)) }

// Add folds b into the checksum under the normalization rule. The loop is
// driven strictly by the remaining byte count.
func (c *NormCRC) Add(b []byte) {
	i := 0
	for i < len(b) {
		if c.lineStart {
			for i < len(b) && isASCIISpace(b[i]) {
				i++
			}
			if i >= len(b) {
				return
			}
			c.lineStart = false
		}
		if b[i] == '\r' {
			i++
			if i >= len(b) {
				return
			}
		}
		if b[i] == '\n' {
			c.lineStart = true
		}
		c.sum = crc32.Update(c.sum, crc32.IEEETable, b[i:i+1])
		i++
	}
}

// isASCIISpace matches C isspace on ASCII input; bytes above 0x7f are never
// whitespace here.
func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
