// Package output renders sigstream-cli results as a table, JSON or YAML.
//
// Values that know how to lay themselves out as rows implement Tabular;
// everything else falls back to indented JSON in table mode.
package output
