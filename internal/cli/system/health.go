package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/mellow/internal/storage"
)

// StoreCheck returns a probe that the store is still reachable.
func StoreCheck(p storage.Provider) func() error {
	return func() error {
		switch s := p.(type) {
		case *storage.JSONStore:
			info, err := os.Stat(s.BaseDir())
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", s.BaseDir())
			}
			return nil
		case *storage.SQLStore:
			if s.DB() == nil {
				return errors.New("database connection is nil")
			}
			return s.DB().Ping()
		}
		return nil
	}
}
