package testutil

import "testing"

// Given opens a scenario. Nest When and Then inside it so the subtest path
// reads as a sentence in `go test -run` output.
func Given(t *testing.T, context string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "Given", context, fn)
}

func When(t *testing.T, action string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "When", action, fn)
}

func Then(t *testing.T, outcome string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "Then", outcome, fn)
}

func step(t *testing.T, keyword, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run(keyword+" "+desc, fn)
}
