package manifest

import (
	"strconv"
	"strings"
)

// Namespace and schema markers used for version detection. Matching is by
// substring so vendor variations of the URLs (http/https, trailing slashes,
// schema file names) are still recognized.
var (
	markers2004 = []string{"adlcp_v1p3", "imsss", "adlseq", "adlnav"}
	markers12   = []string{"adlcp_rootv1p2", "imscp_rootv1p1p2"}
)

// detectVersion classifies a manifest from its namespace declarations,
// schema locations and schemaversion text.
func detectVersion(namespaces []string, schemaVersion string) Version {
	sv := strings.ToLower(strings.TrimSpace(schemaVersion))
	if strings.HasPrefix(sv, "2004") || strings.HasPrefix(sv, "cam 1.3") {
		return Version2004
	}
	for _, ns := range namespaces {
		if containsAny(strings.ToLower(ns), markers2004) {
			return Version2004
		}
	}
	if sv == "1.2" {
		return Version12
	}
	for _, ns := range namespaces {
		if containsAny(strings.ToLower(ns), markers12) {
			return Version12
		}
	}
	return VersionUnknown
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// extractor reads the version-specific metadata locations.
type extractor struct {
	masteryScore func(doc *xmlManifest, org *xmlOrganization) *float64
	sequencing   func(doc *xmlManifest, org *xmlOrganization) *Sequencing
}

// extractors maps each version to its metadata extraction logic. Unknown
// manifests try the 1.2 locations first, then the 2004 ones.
var extractors = map[Version]extractor{
	Version12: {
		masteryScore: masteryScore12,
		sequencing:   noSequencing,
	},
	Version2004: {
		masteryScore: masteryScore2004,
		sequencing:   sequencing2004,
	},
	VersionUnknown: {
		masteryScore: func(doc *xmlManifest, org *xmlOrganization) *float64 {
			if s := masteryScore12(doc, org); s != nil {
				return s
			}
			return masteryScore2004(doc, org)
		},
		sequencing: sequencing2004,
	},
}

// masteryScore12 returns the first adlcp:masteryscore of the default
// organization's items in document order.
func masteryScore12(_ *xmlManifest, org *xmlOrganization) *float64 {
	if org == nil {
		return nil
	}
	var score *float64
	walkXML(org.Items, func(it *xmlItem) bool {
		score = parseScore(it.MasteryScore)
		return score == nil
	})
	return score
}

// masteryScore2004 returns the minimum normalized measure of the first
// primary objective that is satisfied by measure, looking at the
// organization's own sequencing before its items. When no objective is
// satisfied by measure, the first declared measure is used.
func masteryScore2004(_ *xmlManifest, org *xmlOrganization) *float64 {
	if org == nil {
		return nil
	}
	var fallback *float64
	for _, seq := range sequencingBlocks(org) {
		p := seq.Objectives.Primary
		if p == nil {
			continue
		}
		score := parseScore(p.MinNormalizedMeasure)
		if score == nil {
			continue
		}
		if parseBool(p.SatisfiedByMeasure, false) {
			return score
		}
		if fallback == nil {
			fallback = score
		}
	}
	return fallback
}

func sequencing2004(_ *xmlManifest, org *xmlOrganization) *Sequencing {
	if org == nil {
		return nil
	}
	for _, seq := range sequencingBlocks(org) {
		if cm := seq.ControlMode; cm != nil {
			// Defaults follow the IMS SS control mode defaults.
			return &Sequencing{
				Choice:      parseBool(cm.Choice, true),
				Flow:        parseBool(cm.Flow, false),
				ForwardOnly: parseBool(cm.ForwardOnly, false),
			}
		}
	}
	return nil
}

func noSequencing(*xmlManifest, *xmlOrganization) *Sequencing { return nil }

// sequencingBlocks lists the organization's sequencing block followed by
// its items' blocks in document order.
func sequencingBlocks(org *xmlOrganization) []*xmlSequencing {
	var blocks []*xmlSequencing
	if org.Sequencing != nil {
		blocks = append(blocks, org.Sequencing)
	}
	walkXML(org.Items, func(it *xmlItem) bool {
		if it.Sequencing != nil {
			blocks = append(blocks, it.Sequencing)
		}
		return true
	})
	return blocks
}

func parseScore(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return def
}
