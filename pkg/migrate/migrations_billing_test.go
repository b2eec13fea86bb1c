package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestProfilesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_profiles.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS profiles",
		"plan_id TEXT NOT NULL DEFAULT 'free'",
		"stripe_customer_id TEXT UNIQUE",
		"stripe_subscription_id TEXT UNIQUE",
		"CHECK (subscription_status IN ('none', 'active', 'past_due', 'canceled'))",
		"FOREIGN KEY (plan_id) REFERENCES plans(id)",
		"DROP TABLE IF EXISTS profiles",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPlansMigrationSeedsDefaults(t *testing.T) {
	content := readMigration(t, "*_create_plans.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS plans",
		"stripe_price_id_monthly TEXT UNIQUE",
		"('free', 'Free', NULL, 0, 3)",
		"ON CONFLICT (id) DO NOTHING",
		"DROP TABLE IF EXISTS plans",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
