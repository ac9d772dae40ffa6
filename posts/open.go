package posts

import "fmt"

// Open builds the repository for a configured driver: memory, file (dir) or
// sqlite (dsn). The sqlite repository must be closed by the caller.
func Open(driver, dir, dsn string) (Repository, error) {
	switch driver {
	case "memory":
		return NewMemoryRepository(), nil
	case "file":
		return NewFileRepository(dir)
	case "sqlite":
		return NewSQLiteRepository(dsn)
	default:
		return nil, fmt.Errorf("store driver %q not supported", driver)
	}
}
