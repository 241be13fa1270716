// Package repository provides a generic Bun repository, the paged query
// executor with deferred counting, and the member and team repositories.
package repository
