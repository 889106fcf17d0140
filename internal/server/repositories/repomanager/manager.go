// Package repomanager hands out repositories bound to either the connection
// pool or a transaction, and applies schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/communityfeed/internal/dbx"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/comments"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/feed"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/posts"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/reactions"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/reports"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Comments(db dbx.DBTX) comments.Repository
	Reactions(db dbx.DBTX) reactions.Repository
	Reports(db dbx.DBTX) reports.Repository
	Feed(db dbx.DBTX) feed.Repository
}
