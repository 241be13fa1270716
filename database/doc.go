// Package database provides connection management, table bootstrap, foreign key
// handling, SQL fixture loading, configuration, query hooks, logging, and SQL
// error classification built on top of Bun.
package database
