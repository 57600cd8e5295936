package srfi

import "github.com/scmlang/scm/internal/interp"

// recordModule is SRFI 9 ("Defining Record Types"): re-exported rather
// than reimplemented, since `define-record-type` is a core macro (spec
// §4.3, internal/macro/derived.go's desugarDefineRecordType) available
// without any import. Importing (srfi 9) is therefore a no-op that exists
// so programs written against the SRFI's library name still load.
type recordModule struct{}

func newRecordModule() *recordModule { return &recordModule{} }

func (*recordModule) Number() int         { return 9 }
func (*recordModule) Name() string        { return "(srfi 9)" }
func (*recordModule) Install(*interp.Interpreter) {}
