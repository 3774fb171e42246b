// Package testutil provides recording stubs for the external
// collaborators and a ready-made pipeline test environment. Stubs
// count every mutating call, which is what the idempotence and
// skip-path assertions are built on.
package testutil
