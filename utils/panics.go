package utils

import "fmt"

// RecoverWithError must be deferred; it turns a panic into *err.
func RecoverWithError(err *error) {
	if rv := recover(); rv != nil {
		*err = fmt.Errorf("got panic: %v", rv)
	}
}
