//go:build !ipifnoassert

package selftest

// Precondition checks are on unless the ipifnoassert build tag is set.
const assertionsEnabled = true
