package shared

import (
	"fmt"

	"github.com/modaro-pos/modaro/internal/platform/httpx"
)

// ErrNoActiveStore is returned when inventory work is requested before any
// store exists.
var ErrNoActiveStore = fmt.Errorf("%w: no active store configured", httpx.ErrValidation)
