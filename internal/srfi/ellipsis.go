package srfi

import "github.com/scmlang/scm/internal/interp"

// ellipsisModule is SRFI 46 ("Basic Syntax-rules Extensions"). Re-exported,
// not reimplemented — internal/macro/pattern.go already walks nested
// ellipsis depth when expanding syntax-rules templates; there is no
// additional binding to install. Custom ellipsis identifiers and
// `(... ...)` escapes are not recognised: `...` is the only ellipsis.
type ellipsisModule struct{}

func newEllipsisModule() *ellipsisModule { return &ellipsisModule{} }

func (*ellipsisModule) Number() int         { return 46 }
func (*ellipsisModule) Name() string        { return "(srfi 46)" }
func (*ellipsisModule) Install(*interp.Interpreter) {}
