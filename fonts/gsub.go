package fonts

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/font/opentype/tables"
)

// substitutionClosure expands a glyph set with every glyph reachable
// through GSUB substitutions, iterating to a fixed point. Fonts without
// a GSUB table return the input set unchanged.
func substitutionClosure(fontData []byte, initial map[int]bool) (map[int]bool, error) {
	loader, err := opentype.NewLoader(bytes.NewReader(fontData))
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}

	closure := make(map[int]bool, len(initial))
	for gid := range initial {
		closure[gid] = true
	}

	gsubTag := opentype.NewTag('G', 'S', 'U', 'B')
	if !loader.HasTable(gsubTag) {
		return closure, nil
	}
	gsubBytes, err := loader.RawTable(gsubTag)
	if err != nil {
		return nil, fmt.Errorf("read GSUB table: %w", err)
	}
	layout, _, err := tables.ParseLayout(gsubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse GSUB layout: %w", err)
	}

	lookups := make([][]tables.GSUBLookup, len(layout.LookupList.Lookups))
	for i, lookup := range layout.LookupList.Lookups {
		subs, err := lookup.AsGSUBLookups()
		if err != nil {
			continue
		}
		lookups[i] = subs
	}

	for changed := true; changed; {
		changed = false
		current := make([]uint16, 0, len(closure))
		for gid := range closure {
			current = append(current, uint16(gid))
		}
		visiting := make(map[int]bool)
		for idx := range lookups {
			if applyLookup(idx, current, closure, lookups, visiting) {
				changed = true
			}
		}
	}
	return closure, nil
}

func applyLookup(idx int, current []uint16, closure map[int]bool, lookups [][]tables.GSUBLookup, visiting map[int]bool) bool {
	if idx < 0 || idx >= len(lookups) || visiting[idx] {
		return false
	}
	subs := lookups[idx]
	if len(subs) == 0 {
		return false
	}
	visiting[idx] = true
	changed := false
	recurse := func(target int, glyphs []uint16) bool {
		return applyLookup(target, glyphs, closure, lookups, visiting)
	}
	for _, sub := range subs {
		if applySubtable(sub, current, closure, recurse) {
			changed = true
		}
	}
	visiting[idx] = false
	return changed
}

type lookupFunc func(idx int, glyphs []uint16) bool

func add(closure map[int]bool, gid int) bool {
	if closure[gid] {
		return false
	}
	closure[gid] = true
	return true
}

func applySubtable(sub tables.GSUBLookup, current []uint16, closure map[int]bool, recurse lookupFunc) bool {
	changed := false
	cov := sub.Cov()

	for _, gid := range current {
		idx, ok := cov.Index(tables.GlyphID(gid))
		if !ok {
			continue
		}

		switch t := sub.(type) {
		case tables.SingleSubs:
			switch d := t.Data.(type) {
			case tables.SingleSubstData1:
				changed = add(closure, int(gid)+int(d.DeltaGlyphID)) || changed
			case tables.SingleSubstData2:
				if idx < len(d.SubstituteGlyphIDs) {
					changed = add(closure, int(d.SubstituteGlyphIDs[idx])) || changed
				}
			}

		case tables.MultipleSubs:
			if idx < len(t.Sequences) {
				for _, out := range t.Sequences[idx].SubstituteGlyphIDs {
					changed = add(closure, int(out)) || changed
				}
			}

		case tables.AlternateSubs:
			if idx < len(t.AlternateSets) {
				for _, out := range t.AlternateSets[idx].AlternateGlyphIDs {
					changed = add(closure, int(out)) || changed
				}
			}

		case tables.LigatureSubs:
			if idx < len(t.LigatureSets) {
				for _, lig := range t.LigatureSets[idx].Ligatures {
					// The ligature forms only when every component glyph
					// is already reachable.
					ok := true
					for _, comp := range lig.ComponentGlyphIDs {
						if !closure[int(comp)] {
							ok = false
							break
						}
					}
					if ok {
						changed = add(closure, int(lig.LigatureGlyph)) || changed
					}
				}
			}

		case tables.ExtensionSubs:
			if inner, err := unwrapExtension(tables.Extension(t)); err == nil && inner != nil {
				if applySubtable(inner, []uint16{gid}, closure, recurse) {
					changed = true
				}
			}

		case tables.ContextualSubs:
			if applyContextual(t.Data, idx, current, recurse) {
				changed = true
			}

		case tables.ChainedContextualSubs:
			if applyChainedContextual(t.Data, idx, current, recurse) {
				changed = true
			}

		case tables.ReverseChainSingleSubs:
			if idx < len(t.SubstituteGlyphIDs) {
				changed = add(closure, int(t.SubstituteGlyphIDs[idx])) || changed
			}
		}
	}
	return changed
}

func unwrapExtension(ext tables.Extension) (tables.GSUBLookup, error) {
	if int(ext.ExtensionOffset) >= len(ext.RawData) {
		return nil, fmt.Errorf("extension offset out of range")
	}
	inner := ext.RawData[ext.ExtensionOffset:]
	switch ext.ExtensionLookupType {
	case 1:
		s, _, err := tables.ParseSingleSubs(inner)
		return s, err
	case 2:
		s, _, err := tables.ParseMultipleSubs(inner)
		return s, err
	case 3:
		s, _, err := tables.ParseAlternateSubs(inner)
		return s, err
	case 4:
		s, _, err := tables.ParseLigatureSubs(inner)
		return s, err
	}
	// Contextual and reverse-chain extensions are handled by the outer
	// fixed-point pass once their target lookups run directly.
	return nil, fmt.Errorf("unsupported extension type %d", ext.ExtensionLookupType)
}

func applyContextual(data tables.ContextualSubsITF, covIdx int, current []uint16, recurse lookupFunc) bool {
	switch t := data.(type) {
	case tables.ContextualSubs1:
		fmt1 := tables.SequenceContextFormat1(t)
		if covIdx >= 0 && covIdx < len(fmt1.SeqRuleSet) {
			return fireRuleSet(fmt1.SeqRuleSet[covIdx], current, recurse)
		}
	case tables.ContextualSubs2:
		fmt2 := tables.SequenceContextFormat2(t)
		changed := false
		for _, set := range fmt2.ClassSeqRuleSet {
			if fireRuleSet(set, current, recurse) {
				changed = true
			}
		}
		return changed
	case tables.ContextualSubs3:
		fmt3 := tables.SequenceContextFormat3(t)
		return fireRecords(fmt3.SeqLookupRecords, current, recurse)
	}
	return false
}

func applyChainedContextual(data tables.ChainedContextualSubsITF, covIdx int, current []uint16, recurse lookupFunc) bool {
	switch t := data.(type) {
	case tables.ChainedContextualSubs1:
		fmt1 := tables.ChainedSequenceContextFormat1(t)
		if covIdx >= 0 && covIdx < len(fmt1.ChainedSeqRuleSet) {
			return fireChainedRuleSet(fmt1.ChainedSeqRuleSet[covIdx], current, recurse)
		}
	case tables.ChainedContextualSubs2:
		fmt2 := tables.ChainedSequenceContextFormat2(t)
		changed := false
		for _, set := range fmt2.ChainedClassSeqRuleSet {
			if fireChainedRuleSet(set, current, recurse) {
				changed = true
			}
		}
		return changed
	case tables.ChainedContextualSubs3:
		fmt3 := tables.ChainedSequenceContextFormat3(t)
		return fireRecords(fmt3.SeqLookupRecords, current, recurse)
	}
	return false
}

func fireRuleSet(set tables.SequenceRuleSet, current []uint16, recurse lookupFunc) bool {
	changed := false
	for _, rule := range set.SeqRule {
		if fireRecords(rule.SeqLookupRecords, current, recurse) {
			changed = true
		}
	}
	return changed
}

func fireChainedRuleSet(set tables.ChainedSequenceRuleSet, current []uint16, recurse lookupFunc) bool {
	changed := false
	for _, rule := range set.ChainedSeqRules {
		if fireRecords(rule.SeqLookupRecords, current, recurse) {
			changed = true
		}
	}
	return changed
}

func fireRecords(records []tables.SequenceLookupRecord, current []uint16, recurse lookupFunc) bool {
	changed := false
	for _, record := range records {
		if recurse(int(record.LookupListIndex), current) {
			changed = true
		}
	}
	return changed
}
