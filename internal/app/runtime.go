package app

import (
	"os"
	"strconv"
)

// TestModeEnv is set by the testing package so main returns before dialing
// Redis or the host.
const TestModeEnv = "AUXMANAGER_TEST_MODE"

// InTestMode reports whether TestModeEnv holds a true value.
func InTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
}
