package invariant

import (
	"errors"
	"testing"
)

func TestCheckPanicsWithViolation(t *testing.T) {
	err := func() (err error) {
		defer Recover(&err)
		Check(1+1 == 3, "math is %s", "broken")
		return nil
	}()
	var v *Violation
	if !errors.As(err, &v) || v.Msg != "math is broken" {
		t.Fatalf("err = %v", err)
	}
}

func TestRecoverRepanicsForeignValues(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("recovered %v", r)
		}
	}()
	var err error
	func() {
		defer Recover(&err)
		panic("boom")
	}()
}
