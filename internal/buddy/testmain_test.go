package buddy

import (
	"os"
	"testing"

	"github.com/DEX-zha/town-hall-mcp/internal/testutil"
)

func TestMain(m *testing.M) {
	testutil.LoadDotEnv()
	os.Exit(m.Run())
}
