// Package parsers imports all report decoders to trigger their init() registration.
// Import this package for side effects only.
package parsers

import (
	// Import all decoder packages to register them with the registry.
	_ "emwin_parser/internal/parsers/amdar"
	_ "emwin_parser/internal/parsers/metar"
	_ "emwin_parser/internal/parsers/rwr"
	_ "emwin_parser/internal/parsers/taf"
)
