package testing

// Logger levels used across test files.
const (
	// TestLoggerLevelDebug is the debug log level used in most tests
	TestLoggerLevelDebug = "debug"
	// TestLoggerLevelError is the error log level for tests requiring minimal output
	TestLoggerLevelError = "error"
	// TestLoggerLevelDisabled completely disables logging in tests
	TestLoggerLevelDisabled = "disabled"
)

// Database connection values for configuration and DSN tests.
const (
	TestUsername        = "testuser"
	TestDatabaseName    = "testdb"
	TestHostLocalhost   = "localhost"
	TestPasswordDefault = "testpass"
)

// Person fixture values shared by round-trip tests.
const (
	TestTablePersons  = "persons"
	TestTableUsers    = "users"
	TestEmailPerson   = "fake@mail.com"
	TestEmailUpdated  = "astolfo@waifu.church"
	TestFirstName     = "Matthew"
	TestLastName      = "Rousseau"
	TestEmailAlice    = "alice@example.com"
	TestEmailBob      = "bob@example.com"
	TestNameAlice     = "Alice"
	TestNameBob       = "Bob"
	TestArchiveActive = 0
)
