package report

// Config holds the options of one report run.
type Config struct {
	File        string // exported progress file; "-" reads stdin
	CatalogPath string // optional plan YAML; the embedded plan when empty
	Filter      string // all, approved, enrollable or pending
	Verbose     bool   // adds missing prerequisites and debug logs
}
