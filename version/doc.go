// Package version describes the build of the running binary.
//
// Values come from -ldflags when set and from the Go build information
// otherwise:
//
//	go build -ldflags "-X github.com/kbukum/insane/version.Version=1.4.0 \
//	    -X github.com/kbukum/insane/version.Commit=$(git rev-parse --short HEAD)"
package version
