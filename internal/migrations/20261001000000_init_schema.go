package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/terraconstructs/sandaran/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20261001000000, down_20261001000000)
}

type tableSpec struct {
	name        string
	model       any
	foreignKeys []string
	indexes     []string
}

// schemaTables lists tables in dependency order. Deleting a project cascades
// to everything that belongs to it.
var schemaTables = []tableSpec{
	{
		name:  "users",
		model: (*models.User)(nil),
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_users_role_active ON users(role_global, is_active)`,
		},
	},
	{
		name:  "sessions",
		model: (*models.Session)(nil),
		foreignKeys: []string{
			`(user_id) REFERENCES users(id) ON DELETE CASCADE`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
		},
	},
	{
		name:  "projects",
		model: (*models.Project)(nil),
	},
	{
		name:  "project_members",
		model: (*models.ProjectMember)(nil),
		foreignKeys: []string{
			`(project_id) REFERENCES projects(id) ON DELETE CASCADE`,
			`(user_id) REFERENCES users(id) ON DELETE CASCADE`,
		},
		indexes: []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_project_members_user_project ON project_members(user_id, project_id)`,
			`CREATE INDEX IF NOT EXISTS idx_project_members_project_id ON project_members(project_id)`,
		},
	},
	{
		name:  "daily_reports",
		model: (*models.DailyReport)(nil),
		foreignKeys: []string{
			`(project_id) REFERENCES projects(id) ON DELETE CASCADE`,
			`(user_id) REFERENCES users(id)`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_daily_reports_project_date ON daily_reports(project_id, report_date)`,
		},
	},
	{
		name:  "daily_report_tasks",
		model: (*models.ReportTask)(nil),
		foreignKeys: []string{
			`(report_id) REFERENCES daily_reports(id) ON DELETE CASCADE`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_daily_report_tasks_report_id ON daily_report_tasks(report_id)`,
		},
	},
	{
		name:  "report_media",
		model: (*models.ReportMedia)(nil),
		foreignKeys: []string{
			`(report_id) REFERENCES daily_reports(id) ON DELETE CASCADE`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_report_media_report_id ON report_media(report_id)`,
		},
	},
	{
		name:  "report_comments",
		model: (*models.ReportComment)(nil),
		foreignKeys: []string{
			`(report_id) REFERENCES daily_reports(id) ON DELETE CASCADE`,
			`(user_id) REFERENCES users(id)`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_report_comments_report_id ON report_comments(report_id)`,
		},
	},
	{
		name:  "project_documents",
		model: (*models.ProjectDocument)(nil),
		foreignKeys: []string{
			`(project_id) REFERENCES projects(id) ON DELETE CASCADE`,
			`(user_id) REFERENCES users(id)`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_project_documents_project_type ON project_documents(project_id, file_type)`,
		},
	},
	{
		name:  "emergency_funds",
		model: (*models.EmergencyFund)(nil),
		foreignKeys: []string{
			`(project_id) REFERENCES projects(id) ON DELETE CASCADE`,
		},
	},
	{
		name:  "emergency_transactions",
		model: (*models.EmergencyTransaction)(nil),
		foreignKeys: []string{
			`(fund_id) REFERENCES emergency_funds(id) ON DELETE CASCADE`,
			`(requested_by_id) REFERENCES users(id)`,
			`(verified_by_id) REFERENCES users(id)`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_emergency_transactions_fund_status ON emergency_transactions(fund_id, status)`,
		},
	},
	{
		name:  "logistic_items",
		model: (*models.LogisticItem)(nil),
		foreignKeys: []string{
			`(project_id) REFERENCES projects(id) ON DELETE CASCADE`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_logistic_items_project_id ON logistic_items(project_id)`,
		},
	},
	{
		name:  "logistic_transactions",
		model: (*models.LogisticTransaction)(nil),
		foreignKeys: []string{
			`(item_id) REFERENCES logistic_items(id) ON DELETE CASCADE`,
			`(user_id) REFERENCES users(id)`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_logistic_transactions_item_id ON logistic_transactions(item_id)`,
		},
	},
}

// up_20261001000000 creates the full schema
func up_20261001000000(ctx context.Context, db *bun.DB) error {
	for _, table := range schemaTables {
		fmt.Printf(" [up] creating %s table...", table.name)
		q := db.NewCreateTable().
			Model(table.model).
			IfNotExists()
		for _, fk := range table.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
		for _, idx := range table.indexes {
			if _, err := db.ExecContext(ctx, idx); err != nil {
				return fmt.Errorf("failed to create index on %s: %w", table.name, err)
			}
		}
		fmt.Println(" OK")
	}
	return nil
}

func down_20261001000000(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping all tables...")

	for i := len(schemaTables) - 1; i >= 0; i-- {
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s", schemaTables[i].name)
		if db.Dialect().Name() == dialect.PG {
			stmt += " CASCADE"
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop %s: %w", schemaTables[i].name, err)
		}
	}

	fmt.Println(" OK")
	return nil
}
