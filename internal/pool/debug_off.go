//go:build !pooldebug

package pool

const debugChecks = false
