package config

import "fmt"

// Error reports a missing or invalid configuration document. It is fatal at
// startup.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
