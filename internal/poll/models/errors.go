package models

import "errors"

// ErrOptionNotFound is returned by the vote transaction when the option id is
// not part of the poll. Missing polls use sentinel.ErrNotFound instead.
var ErrOptionNotFound = errors.New("option not found")
