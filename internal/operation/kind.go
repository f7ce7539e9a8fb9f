package operation

import "strings"

// Kind is the closed set of operations the dispatcher can run.
type Kind int

// Operation kinds. KindUnknown stands for any unrecognized name.
const (
	KindUnknown Kind = iota
	KindStart
	KindStop
	KindRestart
	KindDelete
	KindOpenWeb
	KindOpenShell
)

// Kinds lists every valid kind in display order.
var Kinds = []Kind{KindStart, KindStop, KindRestart, KindDelete, KindOpenWeb, KindOpenShell}

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindStart:     "start",
	KindStop:      "stop",
	KindRestart:   "restart",
	KindDelete:    "delete",
	KindOpenWeb:   "open-web",
	KindOpenShell: "open-shell",
}

// aliases accepted on input besides the canonical names.
var kindAliases = map[string]Kind{
	"web":  KindOpenWeb,
	"exec": KindOpenShell,
	"rm":   KindDelete,
}

// ParseKind maps an operation name to its Kind, case-insensitively.
// Unrecognized names yield KindUnknown.
func ParseKind(name string) Kind {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range kindNames {
		if kind != KindUnknown && n == name {
			return kind
		}
	}
	if kind, ok := kindAliases[name]; ok {
		return kind
	}
	return KindUnknown
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Mutating reports whether the kind changes container state in the runtime.
func (k Kind) Mutating() bool {
	switch k {
	case KindStart, KindStop, KindRestart, KindDelete:
		return true
	case KindUnknown, KindOpenWeb, KindOpenShell:
		return false
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
