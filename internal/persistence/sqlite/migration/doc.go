// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migration files follow the naming convention {version}_{description}.sql
// (for example "001_create_events.sql") and are read from an fs.FS, usually an
// embed.FS compiled into the binary. Applied versions are tracked in the
// schema_migrations table together with the file checksum, so a file edited
// after it was applied is reported instead of silently ignored.
//
//	manager := migration.NewManager(migration.NewScanner(files), migration.NewExecutor(db), logger)
//	if err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
