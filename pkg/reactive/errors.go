package reactive

import "errors"

// ErrFlushOverflow is the fatal condition raised when a flush does not
// settle within MaxFlushPasses. It signals a dependency cycle or an effect
// that keeps writing to a cell it also reads. Flush panics with an error
// wrapping this sentinel so error-boundary layers can recover and match it
// with errors.Is.
var ErrFlushOverflow = errors.New("reactive: flush exceeded pass budget")

// ErrKeyedTypeMismatch is raised when a keyed state cell is requested with
// a different value type than the one it was created with.
var ErrKeyedTypeMismatch = errors.New("reactive: keyed state type mismatch")
