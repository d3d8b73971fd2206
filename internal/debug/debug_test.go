package debug_test

import (
	"testing"

	"github.com/fastdfs-go/fastdfs/internal/debug"
)

func TestAssertNeverPanicsOnTrue(t *testing.T) {
	debug.Assert(true, "should not fire")
	debug.Assertf(true, "should not fire: %d", 1)
	debug.AssertNoErr(nil)
	_ = debug.ON()
}
