//go:build oneshotdebug

package oneshot

const debugBuild = true
