package testutil

import "time"

// FixedTime is a stable timestamp for tests that need a clock reading
var FixedTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
