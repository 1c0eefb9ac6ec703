// Package cmd provides the command-line interface for strata.
//
// This package implements the CLI commands using the Cobra framework.
//
// # Available Commands
//
//   - render: render one view composed with its layout chain
//   - list: list the views with their layouts and sections
//   - check: render every view and validate the markup it produces
//   - serve: start the preview server with live reload
//   - version: show build information
//
// # Command Examples
//
//	// Render a page with its model file to disk
//	strata render pages/home.html.tmpl --out public/index.html
//
//	// List views as JSON
//	strata list --format json
//
//	// Check markup including the accessibility rules
//	strata check --a11y
//
//	// Preview on another port
//	strata serve --port 3000
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (STRATA_*)
//  3. Configuration file (.strata.yml, or the file given with --config)
//  4. Default values (lowest priority)
package cmd
