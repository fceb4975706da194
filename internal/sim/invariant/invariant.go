// Package invariant reports programmer errors. A violation means engine state
// and the rules describing it have diverged; it is never recovered from.
package invariant

import "fmt"

type Violation struct {
	Msg string
}

func (v *Violation) Error() string { return "invariant violated: " + v.Msg }

// Check panics with a *Violation when cond is false.
func Check(cond bool, format string, args ...any) {
	if !cond {
		panic(&Violation{Msg: fmt.Sprintf(format, args...)})
	}
}

func Fail(format string, args ...any) {
	panic(&Violation{Msg: fmt.Sprintf(format, args...)})
}

// NoError panics when err is non-nil.
func NoError(err error) {
	if err != nil {
		panic(&Violation{Msg: err.Error()})
	}
}

// Recover converts a Violation panic into an error and re-panics anything
// else. Use as: defer invariant.Recover(&err).
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if v, ok := r.(*Violation); ok {
		*err = v
		return
	}
	panic(r)
}
