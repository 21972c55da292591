// SPDX-License-Identifier: MPL-2.0

// Package config loads the per-tree docnose configuration.
//
// A documentation tree may carry a conf.cue in its configuration directory.
// The file is validated against an embedded CUE schema (conf_schema.cue),
// merged over built-in defaults with Viper, and can be overridden through
// DOCNOSE_* environment variables (DOCNOSE_DEFAULT_GROUP and so on). The
// optional env file it names seeds the environment every example shell
// starts from.
package config
