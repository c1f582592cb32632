package editor

// Help describes the editing surface: the known unit templates, the
// synonym tables the resolver accepts, and a one-line-per-verb grammar
// summary. It needs no scenario.
type Help struct {
	Templates     []string          `json:"templates"`
	UnitSynonyms  map[string]string `json:"unit_synonyms"`
	ParamSynonyms map[string]string `json:"param_synonyms"`
	Grammar       []string          `json:"grammar"`
}

// grammarSummary is the fixed verb reference. One line per verb, in the
// order the parser tries them.
var grammarSummary = []string{
	"replace <unit> with <unit>",
	"add <unit> [after|before|at <id>]",
	"remove <unit>",
	"connect <id> -> <id>",
	"disconnect <id> -> <id>",
	"duplicate <unit> as <id>",
	"set <key>=<value>[, <key>=<value> ...] [on <unit>]",
	"run [deterministic|sobol] [n=<count>]",
}

// Help reports the ontology contents and the command grammar.
func (e *Editor) Help() *Help {
	return &Help{
		Templates:     e.onto.Templates(),
		UnitSynonyms:  e.onto.UnitSynonyms(),
		ParamSynonyms: e.onto.ParamSynonyms(),
		Grammar:       append([]string(nil), grammarSummary...),
	}
}
