// Package installer defines the external collaborator contracts the
// pipeline consumes: package and toolchain installers, the cloud/auth
// setup routine, the downstream build system, and git itself. Each is
// a blocking call with a uniform success-or-failure-with-message
// outcome; the pipeline never inspects collaborator internals.
package installer
