package gowrap

import (
	"strings"
)

// Marker comments and struct tag recognised in host source.
const (
	exposeMarker   = "//capscript:expose"
	propertyMarker = "//capscript:property"
	tagKey         = "capscript"
	tagExpose      = "expose"
)

// marker is one parsed capscript directive.
type marker struct {
	kind string // "expose" or "property"
	name string // optional script name override
}

// parseMarker recognises "//capscript:expose" and "//capscript:property",
// each optionally followed by a script name.
func parseMarker(line string) (marker, bool) {
	for _, prefix := range []string{exposeMarker, propertyMarker} {
		rest, ok := strings.CutPrefix(line, prefix)
		if !ok {
			continue
		}
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			// e.g. //capscript:exposed
			return marker{}, false
		}
		return marker{
			kind: strings.TrimPrefix(prefix, "//capscript:"),
			name: strings.TrimSpace(rest),
		}, true
	}
	return marker{}, false
}

// HostTypeFuncName is the generated constructor for a type's table.
// e.g., "Player" → "PlayerHostType"
func HostTypeFuncName(typeName string) string {
	return typeName + "HostType"
}

// SetterName is the setter paired with a property getter.
// e.g., "Health" → "SetHealth"
func SetterName(getter string) string {
	return "Set" + getter
}

// OutputFileName is the generated file name for a package.
// e.g., "game" → "game_capscript.go"
func OutputFileName(pkgName string) string {
	return sanitizePkgName(pkgName) + "_capscript.go"
}

// OutputPackageName is the package name used for bindings generated
// outside the wrapped package.
// e.g., "game" → "capscript_game"
func OutputPackageName(pkgName string) string {
	return "capscript_" + sanitizePkgName(pkgName)
}

func sanitizePkgName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
