//go:build !oneshotdebug

package oneshot

// debugBuild compiles degenerate-case logging out of release builds.
const debugBuild = false
