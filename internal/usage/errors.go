package usage

import "errors"

// ErrLimitReached indicates the identity spent its image allowance for the
// current window.
var ErrLimitReached = errors.New("analysis limit reached")
