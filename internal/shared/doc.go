// Package shared holds helpers used across packages that belong to no single
// layer. The testutil subpackage provides log capture and accident extract
// fixtures for tests.
package shared
