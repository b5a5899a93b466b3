// Package main provides the entry point of GoRoles-Admin.
// It manages a hierarchy of roles where a role inherits every role granted to it,
// directly or transitively. Grants that would make a role inherit itself are rejected.
// The hierarchy is stored with gorm in mysql, postgres or sqlite and is managed
// through a fiber based admin API or the role subcommands.
package main
