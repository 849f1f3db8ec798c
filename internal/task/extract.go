package task

// FieldAliases maps one target field of an agent's task view to the
// master-task fields that may supply it, checked in priority order.
type FieldAliases struct {
	Target  string
	Sources []string
}

// Extractor derives the narrow task view an agent type expects from a
// composite master task. Alias tables are data: adding an accepted
// source-field name is a table entry, not a code change.
type Extractor struct {
	tables map[string][]FieldAliases
}

// NewExtractor returns an extractor with no registered tables; every
// agent type passes the master task through unchanged until a table is
// registered for it.
func NewExtractor() *Extractor {
	return &Extractor{tables: make(map[string][]FieldAliases)}
}

// DefaultExtractor returns an extractor preloaded with the alias tables
// for the built-in agent types. The validator deliberately has no table
// and receives the full master task.
func DefaultExtractor() *Extractor {
	e := NewExtractor()
	e.Register("email", []FieldAliases{
		{Target: "content", Sources: []string{"emailContent", "content", "body"}},
		{Target: "subject", Sources: []string{"subject", "emailSubject"}},
		{Target: "sender", Sources: []string{"sender", "from"}},
	})
	e.Register("price", []FieldAliases{
		{Target: "currentPrice", Sources: []string{"price", "currentPrice"}},
		{Target: "priceHistory", Sources: []string{"priceHistory", "history"}},
		{Target: "productName", Sources: []string{"productName", "product"}},
	})
	e.Register("stock", []FieldAliases{
		{Target: "stock", Sources: []string{"stock", "currentStock", "inventory"}},
		{Target: "salesHistory", Sources: []string{"salesHistory", "sales"}},
		{Target: "productName", Sources: []string{"productName", "product"}},
	})
	e.Register("product", []FieldAliases{
		{Target: "productName", Sources: []string{"productName", "product", "name"}},
		{Target: "category", Sources: []string{"category"}},
		{Target: "attributes", Sources: []string{"attributes"}},
	})
	return e
}

// Register sets the alias table for an agent type, replacing any
// previous table.
func (e *Extractor) Register(agentType string, table []FieldAliases) {
	e.tables[agentType] = table
}

// Extract builds the task view for agentType from the master task.
// Fields with no present source are omitted. Agent types without a
// registered table receive a private copy of the whole master task.
func (e *Extractor) Extract(master Payload, agentType string) Payload {
	table, ok := e.tables[agentType]
	if !ok {
		return master.Clone()
	}

	view := make(Payload, len(table))
	for _, fa := range table {
		for _, src := range fa.Sources {
			if v, present := master[src]; present {
				view[fa.Target] = v
				break
			}
		}
	}
	return view
}
