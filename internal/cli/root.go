// Package cli holds the shared command context. Commands live in the
// subpackages and receive *Context from kong.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/mellow/internal/commands"
	"github.com/julianstephens/mellow/internal/config"
	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/models"
	"github.com/julianstephens/mellow/internal/storage"
)

type Context struct {
	Config  *config.Config
	Store   storage.Provider
	Service *commands.Service
	Out     io.Writer
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// LockPath is where serve keeps its single-instance lockfile: beside a
// local store, or in the temp dir for a remote one.
func (c *Context) LockPath() string {
	if storage.IsPostgresDSN(c.Config.Store) {
		return filepath.Join(os.TempDir(), constants.LockfileName)
	}
	return filepath.Join(filepath.Dir(filepath.Clean(c.Config.Store)), constants.LockfileName)
}

// OwnerFlags selects whose logs a terminal command acts on.
type OwnerFlags struct {
	Guild string `help:"Server (guild) ID. Omit for direct-message data." placeholder:"ID"`
	User  string `help:"Member (user) ID." required:"" placeholder:"ID"`
	Name  string `help:"Display name used in report headings. Defaults to the user ID."`
}

func (f OwnerFlags) Owner() (models.Owner, error) {
	o := models.NewOwner(f.Guild, f.User)
	if err := o.Validate(); err != nil {
		return models.Owner{}, err
	}
	return o, nil
}

func (f OwnerFlags) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.User
}
