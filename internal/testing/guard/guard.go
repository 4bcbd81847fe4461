// Package guard flips the runtime into test mode as a side effect of being
// imported, keeping test binaries from starting servers or workers.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("MODARO_TEST_MODE") == "" {
			_ = os.Setenv("MODARO_TEST_MODE", "1")
		}
	})
}
