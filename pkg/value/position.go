package value

import "fmt"

// Position locates a byte in the source document. Line and Column are
// 1-indexed; Offset counts bytes from the start of the stream and uses
// int64 because documents routinely exceed 2 GiB. The zero Position
// means the location is unknown.
type Position struct {
	Offset int64
	Line   int
	Column int
}

// IsValid reports whether the position carries a real location.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// String renders the position as "line:column" for diagnostics.
func (p Position) String() string {
	if !p.IsValid() {
		return "?:?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
