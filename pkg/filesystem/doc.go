// Package filesystem provides the FS abstraction the provisioning
// pipeline mutates through. Production code uses the OS implementation;
// tests substitute an afero-backed in-memory implementation so guard
// and installer behavior can be exercised without a real home directory.
package filesystem
