package loadconfig

import (
	_ "embed"
)

//go:embed template.yaml
var defaultTemplate []byte

// DefaultTemplate returns a copy of the template shipped with the tool.
func DefaultTemplate() []byte {
	return append([]byte(nil), defaultTemplate...)
}
