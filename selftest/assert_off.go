//go:build ipifnoassert

package selftest

const assertionsEnabled = false
