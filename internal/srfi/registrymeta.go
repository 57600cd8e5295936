package srfi

import (
	"sort"

	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/value"
)

// registryModule is SRFI 97 ("SRFI Libraries"), the naming convention this
// whole package is built around. Installing it binds `srfi-features`, a
// procedure returning the sorted list of SRFI numbers (as integers)
// that DefaultRegistry actually carries, so a program can
// probe for a library before importing it instead of relying on import
// failing loudly.
type registryModule struct{}

func newRegistryModule() *registryModule { return &registryModule{} }

func (*registryModule) Number() int  { return 97 }
func (*registryModule) Name() string { return "(srfi 97)" }

func (*registryModule) Install(in *interp.Interpreter) {
	in.Global.Define("srfi-features", value.NewPrimitive("srfi-features", 0, func(args []value.Value) (value.Value, error) {
		nums := DefaultRegistry.Numbers()
		sort.Ints(nums)
		out := make([]value.Value, len(nums))
		for i, n := range nums {
			out[i] = value.Int(int64(n))
		}
		return value.SliceToList(out, value.Nil), nil
	}))
}
