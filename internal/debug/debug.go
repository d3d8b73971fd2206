//go:build !debug

// Package debug provides assertions compiled out of non-debug builds,
// adapted from aistore's cmn/debug.
package debug

func ON() bool { return false }

func Assert(bool, ...any)          {}
func Assertf(bool, string, ...any) {}
func AssertNoErr(error)            {}
