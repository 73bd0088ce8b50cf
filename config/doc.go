// Package config resolves device parameters in three layers, lowest to
// highest precedence: compiled-in defaults, an optional YAML topology
// file, and DP_* environment variables (loaded from a .env file if
// present before the process environment is read). Explicit SetParam
// calls on the device object at commit time override all three; config
// only establishes the values a device starts with (spec §6).
package config
