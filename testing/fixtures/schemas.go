package fixtures

import (
	"github.com/gaborage/go-datamap/database/schema"
)

// Audit returns the shared archive/created/updated field set.
func Audit() []schema.Field {
	return []schema.Field{
		schema.Int("archive", schema.Default(0)),
		schema.Time("created"),
		schema.Time("updated"),
	}
}

// PersonSchema returns a fresh persons schema: id, email, first_name,
// last_name and the audit fields.
func PersonSchema() *schema.Schema {
	return schema.MustDefine("persons", []schema.Field{
		schema.Int("id", schema.PrimaryKey()),
		schema.String("email", schema.Rules("omitempty,email")),
		schema.String("first_name"),
		schema.String("last_name"),
	}, schema.Inherit(Audit()...))
}

// UserSchema returns a fresh users schema referencing persons.
func UserSchema() *schema.Schema {
	return schema.MustDefine("users", []schema.Field{
		schema.Int("id", schema.PrimaryKey()),
		schema.Int("person_id", schema.NotNull()),
		schema.String("name"),
	})
}

// PersonsDDL creates the persons table on SQLite.
const PersonsDDL = `CREATE TABLE persons (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT,
	first_name TEXT,
	last_name TEXT,
	archive INTEGER NOT NULL DEFAULT 0,
	created TIMESTAMP,
	updated TIMESTAMP
)`

// UsersDDL creates the users table on SQLite.
const UsersDDL = `CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	person_id INTEGER NOT NULL REFERENCES persons(id),
	name TEXT
)`
