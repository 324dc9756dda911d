package migrate

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// The users model maps phone/address/city/country as nullable pointers and
// registration inserts them as NULL, so the schema must not mark them
// NOT NULL.
func TestInitSchemaOptionalUserColumnsAreNullable(t *testing.T) {
	t.Parallel()

	raw, err := os.ReadFile(filepath.Join("migrations", "20250301000000_init_schema.sql"))
	if err != nil {
		t.Fatalf("read init schema: %v", err)
	}

	usersTable := regexp.MustCompile(`(?s)CREATE TABLE users \((.*?)\);`).FindStringSubmatch(string(raw))
	if usersTable == nil {
		t.Fatal("users table not found in init schema")
	}

	for _, column := range []string{"phone", "address", "city", "country"} {
		for _, line := range strings.Split(usersTable[1], "\n") {
			trimmed := strings.TrimSpace(line)
			if !strings.HasPrefix(trimmed, column+" ") {
				continue
			}
			if strings.Contains(trimmed, "NOT NULL") {
				t.Fatalf("column %s must be nullable, got %q", column, trimmed)
			}
		}
	}
}
