package database

import (
	"io/fs"
	"strings"
	"testing"
)

// The stores write absent optional text as explicit NULL (NULLIF on
// insert, sql.NullString on scan). A NOT NULL constraint on those
// columns would reject the write at runtime even though the column
// carries a default, since defaults only apply to omitted columns.
// This pins the schema to the write path.
func TestMigrations_NullableColumnsMatchWritePath(t *testing.T) {
	schema := readMigrationSource(t, "migrations/000001_init.up.sql")

	nullable := []string{"api_key_encrypted", "system_prompt", "description"}

	for _, line := range strings.Split(schema, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, col := range nullable {
			if strings.HasPrefix(trimmed, col+" ") && strings.Contains(trimmed, "NOT NULL") {
				t.Errorf("column %s is declared NOT NULL but the store writes NULL for it: %s",
					col, trimmed)
			}
		}
	}
}

func TestMigrations_UpDownPairs(t *testing.T) {
	entries, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migrations found")
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		switch {
		case strings.HasSuffix(entry, ".up.sql"):
			seen[strings.TrimSuffix(entry, ".up.sql")] = true
		case strings.HasSuffix(entry, ".down.sql"):
		default:
			t.Errorf("migration %s is neither .up.sql nor .down.sql", entry)
		}
	}

	for base := range seen {
		if _, err := fs.Stat(migrations, base+".down.sql"); err != nil {
			t.Errorf("migration %s has no matching down migration", base)
		}
	}
}

func readMigrationSource(t *testing.T, name string) string {
	t.Helper()

	data, err := fs.ReadFile(migrations, name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}
