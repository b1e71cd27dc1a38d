package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedData struct {
	Users []struct {
		Username         string   `yaml:"username"`
		Email            string   `yaml:"email"`
		FullName         string   `yaml:"full_name"`
		Role             string   `yaml:"role"`
		Department       string   `yaml:"department"`
		Skills           []string `yaml:"skills"`
		WorkloadCapacity int      `yaml:"workload_capacity"`
	} `yaml:"users"`
	RoutingRules []struct {
		Name      string         `yaml:"name"`
		Condition map[string]any `yaml:"condition"`
		Assignee  string         `yaml:"assignee"`
		Team      string         `yaml:"team"`
		Priority  int            `yaml:"priority"`
	} `yaml:"routing_rules"`
}

// SeedBaseline inserts the baseline admin user and routing rules. It is
// idempotent: existing rows are left untouched.
func SeedBaseline(ctx context.Context, db *sql.DB) error {
	var data seedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return fmt.Errorf("parse seed data: %w", err)
	}

	for _, user := range data.Users {
		skillsJSON, err := json.Marshal(user.Skills)
		if err != nil {
			return fmt.Errorf("marshal seed skills: %w", err)
		}
		capacity := user.WorkloadCapacity
		if capacity <= 0 {
			capacity = 10
		}
		if _, err := db.ExecContext(ctx, `
INSERT INTO users (username, email, full_name, role, department, skills, workload_capacity, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE)
ON CONFLICT (username) DO NOTHING
`, user.Username, user.Email, user.FullName, user.Role, user.Department, skillsJSON, capacity); err != nil {
			return fmt.Errorf("seed user %s: %w", user.Username, err)
		}
	}

	for _, rule := range data.RoutingRules {
		condJSON, err := json.Marshal(rule.Condition)
		if err != nil {
			return fmt.Errorf("marshal seed condition: %w", err)
		}
		if _, err := db.ExecContext(ctx, `
INSERT INTO routing_rules (name, condition, assignee, team, priority, is_active)
SELECT $1, $2, NULLIF($3,''), NULLIF($4,''), $5, TRUE
WHERE NOT EXISTS (SELECT 1 FROM routing_rules WHERE name = $1)
`, rule.Name, condJSON, rule.Assignee, rule.Team, rule.Priority); err != nil {
			return fmt.Errorf("seed routing rule %s: %w", rule.Name, err)
		}
	}
	return nil
}
