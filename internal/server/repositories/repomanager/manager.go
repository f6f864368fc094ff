package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophaccounts/internal/dbx"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/activationtokens"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/groups"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/refreshsessions"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB handle or transaction
// and owns the schema.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Groups(db dbx.DBTX) groups.Repository
	ActivationTokens(db dbx.DBTX) activationtokens.Repository
	RefreshSessions(db dbx.DBTX) refreshsessions.Repository
}
