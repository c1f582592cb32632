package ontology

import "fmt"

// Builtin returns the ontology compiled from the built-in definition table.
// The table covers the standard bioprocess flowsheet vocabulary and is
// known collision-free; a collision here is a programming error.
func Builtin() *Ontology {
	o, err := New(builtinDefs())
	if err != nil {
		panic(fmt.Sprintf("builtin ontology: %v", err))
	}
	return o
}

// builtinDefs is the built-in unit template table. Synonyms are the surface
// forms operators actually type; parameter keys carry their unit of measure
// in the suffix.
func builtinDefs() []UnitDef {
	return []UnitDef{
		{
			Template: "Fermenter_Fedbatch_v2",
			Synonyms: []string{"fermenter", "fed-batch fermenter", "production fermenter", "bioreactor"},
			Params: []ParamDef{
				{Key: "titer_g_per_L", Synonyms: []string{"titer"}},
				{Key: "temperature_C", Synonyms: []string{"temp", "temperature"}},
				{Key: "target_pH", Synonyms: []string{"pH", "ph"}},
				{Key: "batch_time_h", Synonyms: []string{"batch time"}},
			},
		},
		{
			Template: "CentrifugeDiscStack_v1",
			Synonyms: []string{"centrifuge", "disc stack", "disk stack centrifuge"},
			Params: []ParamDef{
				{Key: "solids_removal_fraction", Synonyms: []string{"solids removal"}},
				{Key: "feed_rate_L_per_h", Synonyms: []string{"feed rate"}},
			},
		},
		{
			Template: "DepthFilter_v1",
			Synonyms: []string{"depth filter", "clarification filter"},
			Params: []ParamDef{
				{Key: "capacity_L_per_m2", Synonyms: []string{"capacity"}},
				{Key: "flux_LMH", Synonyms: []string{"flux"}},
			},
		},
		{
			Template: "MF_Membrane_v1",
			Synonyms: []string{"mf", "mf membrane", "microfiltration"},
			Params: []ParamDef{
				{Key: "flux_LMH", Synonyms: []string{"flux"}},
				{Key: "transmembrane_pressure_bar", Synonyms: []string{"tmp", "transmembrane pressure"}},
				{Key: "recycle_fraction", Synonyms: []string{"recycle"}},
			},
		},
		{
			Template: "AEX_Membrane_v1",
			Synonyms: []string{"aex", "aex membrane", "anion exchange", "anion exchange membrane"},
			Params: []ParamDef{
				{Key: "target_pH", Synonyms: []string{"pH", "ph"}},
				{Key: "loading_g_per_L", Synonyms: []string{"loading"}},
				{Key: "recycle_fraction", Synonyms: []string{"recycle"}},
			},
		},
		{
			Template: "ChitosanCapture_v1",
			Synonyms: []string{"chitosan", "chitosan capture", "chitosan flocculation"},
			Params: []ParamDef{
				{Key: "target_pH", Synonyms: []string{"pH", "ph"}},
				{Key: "dosage_g_per_L", Synonyms: []string{"dosage", "dose"}},
				{Key: "recycle_fraction", Synonyms: []string{"recycle"}},
			},
		},
		{
			Template: "CEX_Column_v1",
			Synonyms: []string{"cex", "cex column", "cation exchange"},
			Params: []ParamDef{
				{Key: "loading_g_per_L", Synonyms: []string{"loading"}},
				{Key: "elution_salt_M", Synonyms: []string{"salt", "elution salt"}},
			},
		},
		{
			Template: "UFDF_v1",
			Synonyms: []string{"ufdf", "uf/df", "ultrafiltration", "diafiltration"},
			Params: []ParamDef{
				{Key: "diavolumes", Synonyms: []string{"dv"}},
				{Key: "concentration_factor", Synonyms: []string{"cf"}},
				{Key: "flux_LMH", Synonyms: []string{"flux"}},
			},
		},
		{
			Template: "SterileFilter_v1",
			Synonyms: []string{"sterile filter", "0.2 micron filter"},
			Params: []ParamDef{
				{Key: "flux_LMH", Synonyms: []string{"flux"}},
			},
		},
		{
			Template: "Lyophilizer_v1",
			Synonyms: []string{"lyo", "lyophilizer", "freeze dryer", "freeze-dryer"},
			Params: []ParamDef{
				{Key: "cycle_time_h", Synonyms: []string{"cycle time"}},
				{Key: "shelf_temperature_C", Synonyms: []string{"shelf temp"}},
			},
		},
	}
}
