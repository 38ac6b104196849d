package schema

// Dependencies is the cross-file lookup table threaded through every
// encoded-size and data-size computation, replacing the source's module
// global `Globals.messages`/`Globals.enums` dicts with an explicit value
// built once per run and passed down instead of mutated from everywhere.
type Dependencies struct {
	messages map[string]*Message
	enums    map[string]*Enum
}

// NewDependencies returns an empty table ready for Register calls.
func NewDependencies() *Dependencies {
	return &Dependencies{
		messages: make(map[string]*Message),
		enums:    make(map[string]*Enum),
	}
}

func (d *Dependencies) RegisterMessage(m *Message) {
	d.messages[m.Name.Symbol()] = m
}

func (d *Dependencies) RegisterEnum(e *Enum) {
	d.enums[e.Name.Symbol()] = e
}

func (d *Dependencies) Message(symbol string) (*Message, bool) {
	m, ok := d.messages[symbol]
	return m, ok
}

func (d *Dependencies) Enum(symbol string) (*Enum, bool) {
	e, ok := d.enums[symbol]
	return e, ok
}
