package testutil

import "testing"

// Given, When and Then name scenario steps. Each reports whether its step
// passed so a scenario can stop at the first broken step:
//
//	if !testutil.When(t, "the user votes", ...) { return }
func Given(t *testing.T, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("Given "+desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("When "+desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("Then "+desc, fn)
}
