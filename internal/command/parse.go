package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/flowscribe/flowscribe/internal/model"
	"github.com/flowscribe/flowscribe/internal/ontology"
)

// Verb patterns. Ids are strict tokens; unit and parameter references are
// free text handed to the ontology. Greedy captures split at the last
// occurrence of their keyword, lazy ones at the first, matching how
// operators read the commands aloud.
var (
	replaceRe    = regexp.MustCompile(`(?i)^replace\s+(.+)\s+with\s+(.+)$`)
	addRe        = regexp.MustCompile(`(?i)^add\s+(.+?)(?:\s+(after|before|at)\s+([A-Za-z0-9_-]+))?$`)
	removeRe     = regexp.MustCompile(`(?i)^remove\s+(.+)$`)
	connectRe    = regexp.MustCompile(`(?i)^connect\s+([A-Za-z0-9_-]+)\s*->\s*([A-Za-z0-9_-]+)$`)
	disconnectRe = regexp.MustCompile(`(?i)^disconnect\s+([A-Za-z0-9_-]+)\s*->\s*([A-Za-z0-9_-]+)$`)
	duplicateRe  = regexp.MustCompile(`(?i)^duplicate\s+(.+)\s+as\s+([A-Za-z0-9_-]+)$`)
	setRe        = regexp.MustCompile(`(?i)^set\s+(.+?)(?:\s+on\s+(.+))?$`)
	runRe        = regexp.MustCompile(`(?i)^run(?:\s+(deterministic|sobol))?(?:\s+n=([0-9]+))?$`)
)

// Parse turns one command line into an intent. Unit surface forms in
// replace and add are resolved through the ontology at parse time; remove,
// duplicate, and set scopes stay raw for id-first resolution at compile
// time. Text matching no pattern parses as Unknown.
func Parse(text string, o *ontology.Ontology) Intent {
	trimmed := strings.TrimSpace(text)

	if m := replaceRe.FindStringSubmatch(trimmed); m != nil {
		return Replace{
			Source: o.ResolveUnit(strings.TrimSpace(m[1])),
			Dest:   o.ResolveUnit(strings.TrimSpace(m[2])),
		}
	}

	if m := addRe.FindStringSubmatch(trimmed); m != nil {
		add := Add{Unit: o.ResolveUnit(strings.TrimSpace(m[1]))}
		switch strings.ToLower(m[2]) {
		case "after":
			add.After = m[3]
		case "before":
			add.Before = m[3]
		case "at":
			add.At = m[3]
		}
		return add
	}

	if m := removeRe.FindStringSubmatch(trimmed); m != nil {
		return Remove{Target: strings.TrimSpace(m[1])}
	}

	if m := connectRe.FindStringSubmatch(trimmed); m != nil {
		return Connect{From: m[1], To: m[2]}
	}

	if m := disconnectRe.FindStringSubmatch(trimmed); m != nil {
		return Disconnect{From: m[1], To: m[2]}
	}

	if m := duplicateRe.FindStringSubmatch(trimmed); m != nil {
		return Duplicate{Target: strings.TrimSpace(m[1]), NewID: m[2]}
	}

	if m := setRe.FindStringSubmatch(trimmed); m != nil {
		params, ok := parseSetParams(m[1], o)
		if ok {
			return Set{Params: params, Scope: strings.TrimSpace(m[2])}
		}
		return Unknown{Raw: text}
	}

	if m := runRe.FindStringSubmatch(trimmed); m != nil {
		run := Run{Mode: strings.ToLower(m[1])}
		if run.Mode == "" {
			run.Mode = "deterministic"
		}
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return Unknown{Raw: text}
			}
			run.N = n
		}
		return run
	}

	return Unknown{Raw: text}
}

// parseSetParams splits "k=v, k=v" assignment lists. Keys resolve through
// the ontology; values coerce by literal priority. Any malformed segment
// rejects the whole list.
func parseSetParams(body string, o *ontology.Ontology) (model.ScalarMap, bool) {
	var params model.ScalarMap
	for _, seg := range strings.Split(body, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return model.ScalarMap{}, false
		}
		eq := strings.Index(seg, "=")
		if eq < 0 {
			return model.ScalarMap{}, false
		}
		key := strings.TrimSpace(seg[:eq])
		if key == "" {
			return model.ScalarMap{}, false
		}
		val := strings.TrimSpace(seg[eq+1:])
		params.Set(o.ResolveParam(key), CoerceLiteral(val))
	}
	if params.Len() == 0 {
		return model.ScalarMap{}, false
	}
	return params, true
}
