package rune

import (
	"os"
	"testing"

	"github.com/dagger/testctx/oteltest"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}
