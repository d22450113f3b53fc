// Package confloader loads configuration with koanf and watches the
// configuration file for changes.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (JOBHOST_SECTION_KEY)
//  3. Configuration file (YAML)
//  4. Defaults already present in the target struct
package confloader
