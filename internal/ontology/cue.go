package ontology

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// Load error codes.
const (
	ErrCodeNotFound   = "E201" // Path missing or not a directory
	ErrCodeNoFiles    = "E202" // No CUE files found
	ErrCodeLoadFailed = "E203" // CUE load or build failed
	ErrCodeNoUnits    = "E204" // No unit definitions present
	ErrCodeBadDef     = "E205" // Definition has the wrong shape
)

// LoadError is an ontology loading failure with CUE position info when
// available.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDir loads unit definitions from the CUE package in dir and builds an
// ontology from them. The expected shape is:
//
//	unit: AEX_Membrane_v1: {
//		synonyms: ["aex membrane", "aex"]
//		param: target_pH: synonyms: ["pH", "ph"]
//	}
//
// Definitions loaded this way replace the built-in table; callers that want
// both compose the definition slices before calling New.
func LoadDir(dir string) (*Ontology, error) {
	defs, err := LoadDefs(dir)
	if err != nil {
		return nil, err
	}
	return New(defs)
}

// LoadDefs loads raw unit definitions from the CUE package in dir.
func LoadDefs(dir string) ([]UnitDef, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("ontology directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing ontology directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return DefsFromValue(value)
}

// DefsFromValue extracts unit definitions from a built CUE value whose top
// level carries the "unit" struct.
func DefsFromValue(value cue.Value) ([]UnitDef, error) {
	unitVal := value.LookupPath(cue.ParsePath("unit"))
	if !unitVal.Exists() {
		return nil, &LoadError{Code: ErrCodeNoUnits, Message: "no unit definitions found (expected top-level \"unit\" struct)"}
	}
	iter, err := unitVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []UnitDef
	for iter.Next() {
		def, err := compileUnitDef(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, &LoadError{Code: ErrCodeNoUnits, Message: "unit struct has no definitions"}
	}
	return defs, nil
}

// compileUnitDef parses one unit definition struct.
func compileUnitDef(name string, v cue.Value) (UnitDef, error) {
	if err := v.Err(); err != nil {
		return UnitDef{}, formatCUEError(err)
	}
	def := UnitDef{Template: name}

	synVal := v.LookupPath(cue.ParsePath("synonyms"))
	if synVal.Exists() {
		syns, err := stringList(synVal)
		if err != nil {
			return UnitDef{}, &LoadError{
				Code:    ErrCodeBadDef,
				Message: fmt.Sprintf("unit %q: synonyms must be a list of strings: %v", name, err),
				Pos:     synVal.Pos(),
			}
		}
		def.Synonyms = syns
	}

	paramVal := v.LookupPath(cue.ParsePath("param"))
	if paramVal.Exists() {
		iter, err := paramVal.Fields()
		if err != nil {
			return UnitDef{}, formatCUEError(err)
		}
		for iter.Next() {
			p := ParamDef{Key: iter.Label()}
			ps := iter.Value().LookupPath(cue.ParsePath("synonyms"))
			if ps.Exists() {
				syns, err := stringList(ps)
				if err != nil {
					return UnitDef{}, &LoadError{
						Code:    ErrCodeBadDef,
						Message: fmt.Sprintf("unit %q param %q: synonyms must be a list of strings: %v", name, p.Key, err),
						Pos:     ps.Pos(),
					}
				}
				p.Synonyms = syns
			}
			def.Params = append(def.Params, p)
		}
	}

	return def, nil
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}
