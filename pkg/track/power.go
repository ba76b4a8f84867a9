package track

// Power is the output mode of the track booster.
type Power int

// Power modes.
const (
	PowerOff Power = iota
	PowerMain
	PowerProg
)

func (p Power) String() string {
	switch p {
	case PowerOff:
		return "off"
	case PowerMain:
		return "main"
	case PowerProg:
		return "prog"
	}
	return "unknown"
}
