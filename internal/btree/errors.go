package btree

import "errors"

// ErrDuplicateKey is returned by Insert when the key already exists.
var ErrDuplicateKey = errors.New("btree: duplicate key")
