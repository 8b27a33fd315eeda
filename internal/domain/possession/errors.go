package possession

import "errors"

// ErrIntegrity reports that derived possessions or stints broke a partition
// or scoring invariant. It signals a logic error, not bad input.
var ErrIntegrity = errors.New("possession integrity check failed")
