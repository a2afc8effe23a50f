// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride redirects ConfigDir for tests. Rewriting HOME is not
// enough: os.UserHomeDir ignores it on some platforms, so lookups must be
// pointed at a temp dir directly.
var configDirOverride string

// SetConfigDirOverride points ConfigDir at dir until Reset is called.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears the override. Pair with t.Cleanup.
func Reset() {
	configDirOverride = ""
}
