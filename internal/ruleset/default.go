package ruleset

import "github.com/risk-signal-engine/internal/domain"

// DefaultVersion identifies the built-in catalog in event metadata.
const DefaultVersion = "builtin-2026.09"

// defaultRules is the built-in bilingual (pt-BR / en) catalog, ordered by
// clinical urgency. Order matters: the detector short-circuits on the first
// match, so suicidal ideation must come before everything else.
var defaultRules = []domain.Rule{
	{
		Kind:       domain.SignalSuicidalIdeation,
		Severity:   domain.SeverityCritical,
		Confidence: 0.9,
		Patterns: []string{
			"quero morrer",
			"quero me matar",
			"vou me matar",
			"acabar com a minha vida",
			"tirar a minha vida",
			"nao quero mais viver",
			"kill myself",
			"want to die",
			"end my life",
			"take my own life",
			"re:\\bsuicid", // suicide, suicidal, suicidio
		},
	},
	{
		Kind:       domain.SignalSelfHarm,
		Severity:   domain.SeverityHigh,
		Confidence: 0.8,
		Patterns: []string{
			"me machucar",
			"me cortar",
			"me cortei",
			"me ferir",
			"hurt myself",
			"cut myself",
			"re:\\bself[ -]harm",
		},
	},
	{
		Kind:       domain.SignalHopelessness,
		Severity:   domain.SeverityHigh,
		Confidence: 0.7,
		Patterns: []string{
			"sem esperanca",
			"nao aguento mais",
			"nada vai melhorar",
			"sem saida",
			"no hope",
			"hopeless",
			"cant go on",
			"can't go on",
			"nothing will get better",
		},
	},
	{
		Kind:       domain.SignalPanic,
		Severity:   domain.SeverityModerate,
		Confidence: 0.7,
		Patterns: []string{
			"ataque de panico",
			"crise de panico",
			"nao consigo respirar",
			"coracao disparado",
			"panic attack",
			"cant breathe",
			"can't breathe",
		},
	},
	{
		Kind:       domain.SignalAgitation,
		Severity:   domain.SeverityModerate,
		Confidence: 0.6,
		Patterns: []string{
			"muito nervoso",
			"muito nervosa",
			"muito ansioso",
			"muito ansiosa",
			"muito agitado",
			"muito agitada",
			"so anxious",
			"on edge",
			"really agitated",
		},
	},
}

// Default compiles the built-in catalog. The catalog is authored data that
// always validates; a compile failure here is a programming error.
func Default() *Ruleset {
	rs, err := Compile(defaultRules, DefaultVersion)
	if err != nil {
		panic("ruleset: built-in catalog failed to compile: " + err.Error())
	}
	return rs
}
