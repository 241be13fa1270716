// Package entity declares the Member and Team Bun models, their projections,
// and registers both tables and the members.team_id foreign key with the
// database package.
package entity
