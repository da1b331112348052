package safe

import (
	"testing"
)

func TestRunWithLogSwallowsPanic(t *testing.T) {
	executed := false
	RunWithLog(func() {
		panic("malformed input")
	}, "safe_test")

	// panic 被吞掉后，后续逻辑照常执行
	RunWithLog(func() {
		executed = true
	}, "safe_test")

	if !executed {
		t.Fatal("expected execution to continue after a recovered panic")
	}
}

func TestRunWithLogRunsFunction(t *testing.T) {
	n := 0
	RunWithLog(func() { n++ }, "safe_test")
	if n != 1 {
		t.Fatalf("expected fn to run once, ran %d times", n)
	}
}
