// File: buffer/hexdump.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const hexdumpWidth = 16

// Hexdump writes the list as rows of sixteen bytes:
//
//	0000 : 66 6f 6f 62 61 72                                : foobar
//
// Printable ASCII is shown verbatim in the right column, everything else as
// '.'.
func (l *List) Hexdump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	row := make([]byte, hexdumpWidth)
	c := l.Begin()
	for off := 0; off < l.length; off += hexdumpWidth {
		n := min(hexdumpWidth, l.length-off)
		if err := c.Copy(row[:n]); err != nil {
			return err
		}
		fmt.Fprintf(bw, "%04x :", off)
		for i := 0; i < hexdumpWidth; i++ {
			if i < n {
				fmt.Fprintf(bw, " %02x", row[i])
			} else {
				bw.WriteString("   ")
			}
		}
		bw.WriteString(" : ")
		for _, b := range row[:n] {
			if b >= 0x20 && b < 0x7f {
				bw.WriteByte(b)
			} else {
				bw.WriteByte('.')
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// HexdumpString returns Hexdump output as a string.
func (l *List) HexdumpString() string {
	var sb strings.Builder
	if err := l.Hexdump(&sb); err != nil {
		return fmt.Sprintf("<hexdump failed: %v>", err)
	}
	return sb.String()
}
