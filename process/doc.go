// Package process runs external tools, such as the migrate CLI checked by
// the doctor, with context cancellation that reaches the whole process
// group.
package process
