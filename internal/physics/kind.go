package physics

import (
	"fmt"
	"strings"

	"github.com/san-kum/etrack/internal/dynamo"
)

// Kind selects one of the right-hand-side models.
type Kind int

const (
	KindLorentz Kind = iota
	KindFordOConnell
	KindRelativisticLorentz
	KindRelativisticFordOConnell
)

var kindNames = map[Kind]string{
	KindLorentz:                  "lorentz",
	KindFordOConnell:             "ford",
	KindRelativisticLorentz:      "relativistic-lorentz",
	KindRelativisticFordOConnell: "relativistic-ford",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds lists every model kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindLorentz, KindFordOConnell, KindRelativisticLorentz, KindRelativisticFordOConnell}
}

// ParseKind accepts the names printed by String, case-insensitively, plus
// "ford-oconnell" for the radiating kinds.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "ford-oconnell", "ford")
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, dynamo.InvalidParameter("unknown model %q", s)
}

// Relativistic reports whether the state carries u = γv instead of v.
func (k Kind) Relativistic() bool {
	return k == KindRelativisticLorentz || k == KindRelativisticFordOConnell
}

// Radiating reports whether the model includes radiation reaction and a
// radiated-energy state component.
func (k Kind) Radiating() bool {
	return k == KindFordOConnell || k == KindRelativisticFordOConnell
}

// StateDim is 6 for position and velocity, plus one for radiated energy.
func (k Kind) StateDim() int {
	if k.Radiating() {
		return 7
	}
	return 6
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
