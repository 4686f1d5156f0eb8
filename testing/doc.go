// Package testing holds shared constants for go-datamap tests.
//
// The subpackages provide the heavier tooling:
//   - mocks: testify mocks of database.Interface, database.Tx and the statement runner
//   - fixtures: pre-configured mocks, sql.Rows and sql.Result builders and sample schemas
//   - containers: throwaway databases for integration tests (build tag "integration")
//
// For scripted fakes that record every statement, see database/testing.
//
//	import (
//		"github.com/gaborage/go-datamap/testing/fixtures"
//		"github.com/gaborage/go-datamap/testing/mocks"
//	)
package testing
