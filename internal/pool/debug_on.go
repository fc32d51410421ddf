//go:build pooldebug

package pool

const debugChecks = true
