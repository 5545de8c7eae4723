package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"propsite/internal/domain"
	"propsite/internal/storage/filestore"
	mysqlrepo "propsite/internal/storage/mysql"
)

// Storage bundles what both binaries need from the configured backend. Themes and users
// always live in the data directory; STORAGE_DRIVER only selects where records go.
type Storage struct {
	Records domain.RecordBackend
	Files   *filestore.Store
	close   func() error
}

func (s Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func OpenStorage(cfg Config) (Storage, error) {
	fs, err := filestore.New(cfg.DataDir)
	if err != nil {
		return Storage{}, err
	}
	if cfg.StorageDriver != DriverMySQL {
		log.Info().Str("dir", fs.Root()).Msg("file storage ready")
		return Storage{Records: fs, Files: fs}, nil
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return Storage{}, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return Storage{}, fmt.Errorf("db.Ping: %w", err)
	}
	log.Info().Str("themes_users_dir", fs.Root()).Msg("database connection ok")
	return Storage{Records: mysqlrepo.New(db), Files: fs, close: db.Close}, nil
}
