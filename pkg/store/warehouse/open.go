package warehouse

import (
	"database/sql"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/config"
	sf "github.com/snowflakedb/gosnowflake"
)

// Open dials the warehouse described by the profile. The caller owns the
// returned handle.
func Open(profile *config.Profile) (*sql.DB, error) {
	switch profile.Platform {
	case domain.PlatformSnowflake:
		dsn, err := sf.DSN(&sf.Config{
			Account:   profile.Account,
			User:      profile.User,
			Password:  profile.Password,
			Database:  profile.Database,
			Schema:    profile.Schema,
			Warehouse: profile.Warehouse,
			Role:      profile.Role,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build snowflake DSN for %s: %w", profile.Name, err)
		}
		db, err := sql.Open("snowflake", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to snowflake profile %s: %w", profile.Name, err)
		}
		return db, nil
	case domain.PlatformDatabricks:
		dsn := fmt.Sprintf("token:%s@%s%s", profile.Token, profile.Host, profile.HTTPPath)
		db, err := sql.Open("databricks", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to databricks profile %s: %w", profile.Name, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported warehouse platform %q", profile.Platform)
	}
}
