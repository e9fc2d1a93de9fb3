// Package testsupport provides filesystem and configuration fixtures shared by
// package tests.
package testsupport
