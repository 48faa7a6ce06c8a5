package solver

import (
	"fmt"
	"strings"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/integrators"
)

// Method selects the time stepper.
type Method int

const (
	MethodBoris Method = iota
	MethodRK4
	MethodRK45
	MethodEuler
)

var methodNames = map[Method]string{
	MethodBoris: "boris",
	MethodRK4:   "rk4",
	MethodRK45:  "rk45",
	MethodEuler: "euler",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Methods lists every stepper in declaration order.
func Methods() []Method {
	return []Method{MethodBoris, MethodRK4, MethodRK45, MethodEuler}
}

func ParseMethod(s string) (Method, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range methodNames {
		if n == name {
			return m, nil
		}
	}
	return 0, dynamo.InvalidParameter("unknown method %q", s)
}

func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Adaptive reports whether the method controls its own step size.
func (m Method) Adaptive() bool { return m == MethodRK45 }

func integratorFor(m Method) (dynamo.Integrator, error) {
	switch m {
	case MethodRK4:
		return integrators.NewRK4(), nil
	case MethodRK45:
		return integrators.NewRK45(), nil
	case MethodEuler:
		return integrators.NewEuler(), nil
	}
	return nil, dynamo.InvalidParameter("method %v is not a generic ODE stepper", m)
}
