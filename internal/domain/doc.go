// Package domain contains the core domain model for ecgwatch.
//
// The domain is transport- and persistence-agnostic: it does not depend on serial ports,
// net/http, YAML parsing or the filesystem. Infra/adapters map into/from these types.
package domain
