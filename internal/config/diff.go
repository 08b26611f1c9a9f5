// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"reflect"
)

// ChangeSummary describes the result of comparing two AppConfigs.
type ChangeSummary struct {
	ChangedFields []string
	// NeedsForce lists affects_state fields that changed; applying them
	// without Force requires operator action.
	NeedsForce []string
}

// Diff compares old against next and classifies every changed field by
// the registry's safety level.
func Diff(old, next AppConfig) ChangeSummary {
	r := GetRegistry()
	var summary ChangeSummary
	compare(r, "", reflect.ValueOf(old), reflect.ValueOf(next), &summary)
	return summary
}

func compare(r *Registry, prefix string, oldVal, nextVal reflect.Value, summary *ChangeSummary) {
	t := oldVal.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		ov, nv := oldVal.Field(i), nextVal.Field(i)

		if f.Type.Kind() == reflect.Struct && !isSimpleLeaf(f.Type) {
			compare(r, path, ov, nv, summary)
			continue
		}
		if !reflect.DeepEqual(ov.Interface(), nv.Interface()) {
			summary.ChangedFields = append(summary.ChangedFields, path)
			if r.SafetyOf(path) == StateChange {
				summary.NeedsForce = append(summary.NeedsForce, path)
			}
		}
	}
}

// Apply applies next over a running config, refusing any affects_state
// field change unless force is true. On refusal, the running config is
// left untouched and the caller gets the list of blocking fields back.
func Apply(running AppConfig, next AppConfig, force bool) (AppConfig, ChangeSummary, error) {
	summary := Diff(running, next)
	if !force && len(summary.NeedsForce) > 0 {
		return running, summary, fmt.Errorf("config: refusing runtime change to affects_state fields without force: %v", summary.NeedsForce)
	}
	return next, summary, nil
}
