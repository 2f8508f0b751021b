package scenario

import (
	"fmt"
	"math"
)

// tweetPools maps engagement format to candidate tweet texts. One is
// picked at random when a script is assembled.
var tweetPools = map[string][]string{
	FormatQuiz: {
		"Can you solve this one before the timer runs out? Answer in the comments.",
		"Quick statics check: which option is right? Drop your answer below.",
		"90% get this wrong on the first try. What's your pick?",
	},
	FormatIdentify: {
		"Point it out before the reveal. Which region is it?",
		"Every mechanical engineer should spot this instantly. Can you?",
	},
	FormatTrueFalse: {
		"True or false? Commit to an answer before the explanation.",
		"Half of you will get this backwards. True or false?",
	},
	FormatInfographic: {
		"Save this one for exam week.",
		"The 60-second refresher you didn't know you needed.",
	},
}

func num(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// builtinTemplates is the full scenario pool. Options formatters list
// the correct answer first.
func builtinTemplates() []*Template {
	return []*Template{
		{
			ID:          "beam_ss_center",
			Category:    "statics",
			Tags:        []string{"beam", "reaction", "simply supported", "point load", "statics"},
			DiagramType: "beam",
			Format:      FormatQuiz,
			numParams: map[string]paramRange{
				"L": {min: 4, max: 12, step: 2, unit: "m"},
				"P": {min: 10, max: 50, step: 5, unit: "kN"},
			},
			solve: func(p params) solved {
				return solved{"Ra": p.nums["P"] / 2, "Rb": p.nums["P"] / 2}
			},
			hook: func(p params) string {
				return fmt.Sprintf("A %s kN load sits dead center on a %s m beam. What does each support carry?",
					num(p.nums["P"]), num(p.nums["L"]))
			},
			diagramDesc: func(p params) string {
				return fmt.Sprintf("Simply supported beam of length %s m with a %s kN point load at midspan, pin at A, roller at B",
					num(p.nums["L"]), num(p.nums["P"]))
			},
			steps: func(p params) []stepSpec {
				P := num(p.nums["P"])
				return []stepSpec{
					{text: "By symmetry, the load splits evenly between the two supports.", highlight: "symmetry"},
					{text: fmt.Sprintf("Sum of vertical forces: Ra + Rb = %s kN.", P), highlight: "equilibrium"},
					{text: fmt.Sprintf("So Ra = Rb = %s / 2.", P), highlight: ""},
				}
			},
			options: func(p params, s solved) []string {
				P := p.nums["P"]
				return []string{
					fmt.Sprintf("%s kN each", num(s["Ra"])),
					fmt.Sprintf("%s kN each", num(P)),
					fmt.Sprintf("%s kN each", num(P/4)),
					fmt.Sprintf("%s kN at A, 0 at B", num(P)),
				}
			},
			explanation: func(p params, s solved) string {
				return fmt.Sprintf("A midspan load on a simply supported beam splits evenly: each reaction is %s kN.", num(s["Ra"]))
			},
			formula: func(params, solved) string { return "Ra = Rb = P / 2" },
		},
		{
			ID:          "beam_ss_offset",
			Category:    "statics",
			Tags:        []string{"beam", "reaction", "simply supported", "moment", "statics"},
			DiagramType: "beam",
			Format:      FormatQuiz,
			numParams: map[string]paramRange{
				"L": {min: 6, max: 12, step: 3, unit: "m"},
				"P": {min: 12, max: 48, step: 6, unit: "kN"},
			},
			solve: func(p params) solved {
				// load at the third point from A
				P := p.nums["P"]
				return solved{"Ra": 2 * P / 3, "Rb": P / 3}
			},
			hook: func(p params) string {
				return fmt.Sprintf("A %s kN load sits a third of the way along a %s m beam. Which support works harder, and by how much?",
					num(p.nums["P"]), num(p.nums["L"]))
			},
			diagramDesc: func(p params) string {
				L := p.nums["L"]
				return fmt.Sprintf("Simply supported beam of length %s m with a %s kN point load at %s m from the left support A",
					num(L), num(p.nums["P"]), num(L/3))
			},
			steps: func(p params) []stepSpec {
				L := p.nums["L"]
				P := p.nums["P"]
				return []stepSpec{
					{text: "Take moments about A to isolate Rb.", highlight: "moments about A"},
					{text: fmt.Sprintf("Rb × %s = %s × %s, so Rb = %s kN.", num(L), num(P), num(L/3), num(P/3)), highlight: ""},
					{text: fmt.Sprintf("Vertical equilibrium gives Ra = %s − %s = %s kN.", num(P), num(P/3), num(2*P/3)), highlight: "equilibrium"},
				}
			},
			options: func(p params, s solved) []string {
				P := p.nums["P"]
				return []string{
					fmt.Sprintf("Ra = %s kN, Rb = %s kN", num(s["Ra"]), num(s["Rb"])),
					fmt.Sprintf("Ra = %s kN, Rb = %s kN", num(P/3), num(2*P/3)),
					fmt.Sprintf("Ra = Rb = %s kN", num(P/2)),
					fmt.Sprintf("Ra = %s kN, Rb = 0", num(P)),
				}
			},
			explanation: func(p params, s solved) string {
				return "The closer support carries the bigger share. Reactions split in inverse proportion to the distances from the load."
			},
			formula: func(params, solved) string { return "Rb = P·a / L,  Ra = P − Rb" },
		},
		{
			ID:          "beam_cantilever_end",
			Category:    "statics",
			Tags:        []string{"cantilever", "beam", "moment", "fixed", "reaction"},
			DiagramType: "cantilever",
			Format:      FormatQuiz,
			numParams: map[string]paramRange{
				"L": {min: 2, max: 6, step: 1, unit: "m"},
				"P": {min: 5, max: 25, step: 5, unit: "kN"},
			},
			solve: func(p params) solved {
				return solved{"M": p.nums["P"] * p.nums["L"], "R": p.nums["P"]}
			},
			hook: func(p params) string {
				return fmt.Sprintf("A %s kN load hangs off the tip of a %s m cantilever. What moment does the wall fight back with?",
					num(p.nums["P"]), num(p.nums["L"]))
			},
			diagramDesc: func(p params) string {
				return fmt.Sprintf("Cantilever beam of length %s m fixed at the left wall, %s kN point load at the free end",
					num(p.nums["L"]), num(p.nums["P"]))
			},
			steps: func(p params) []stepSpec {
				return []stepSpec{
					{text: "The fixed end must supply both a vertical reaction and a moment.", highlight: "fixed end"},
					{text: fmt.Sprintf("Vertical: R = P = %s kN.", num(p.nums["P"])), highlight: ""},
					{text: fmt.Sprintf("Moment about the wall: M = %s × %s.", num(p.nums["P"]), num(p.nums["L"])), highlight: "M = P·L"},
				}
			},
			options: func(p params, s solved) []string {
				M := s["M"]
				return []string{
					fmt.Sprintf("%s kN·m", num(M)),
					fmt.Sprintf("%s kN·m", num(M/2)),
					fmt.Sprintf("%s kN·m", num(2*M)),
					fmt.Sprintf("%s kN·m", num(p.nums["P"])),
				}
			},
			explanation: func(p params, s solved) string {
				return fmt.Sprintf("A tip load on a cantilever produces a fixed-end moment of P times L: %s kN·m here.", num(s["M"]))
			},
			formula: func(params, solved) string { return "M = P · L" },
		},
		{
			ID:          "stress_axial_rod",
			Category:    "mechanics_of_materials",
			Tags:        []string{"stress", "axial", "rod", "cross section", "tension"},
			DiagramType: "rod",
			Format:      FormatQuiz,
			numParams: map[string]paramRange{
				"d": {min: 20, max: 50, step: 10, unit: "mm"},
				"F": {min: 20, max: 100, step: 20, unit: "kN"},
			},
			solve: func(p params) solved {
				d := p.nums["d"]
				area := math.Pi * d * d / 4
				return solved{"A": area, "sigma": p.nums["F"] * 1000 / area}
			},
			hook: func(p params) string {
				return fmt.Sprintf("A %s mm rod carries %s kN in tension. Is the stress closer to 30 or 300 MPa?",
					num(p.nums["d"]), num(p.nums["F"]))
			},
			diagramDesc: func(p params) string {
				return fmt.Sprintf("Circular rod of diameter %s mm loaded axially in tension with %s kN at both ends",
					num(p.nums["d"]), num(p.nums["F"]))
			},
			steps: func(p params) []stepSpec {
				return []stepSpec{
					{text: fmt.Sprintf("Cross-sectional area: A = πd²/4 ≈ %.0f mm².", math.Pi*p.nums["d"]*p.nums["d"]/4), highlight: "A = πd²/4"},
					{text: fmt.Sprintf("Convert the load: %s kN = %s N.", num(p.nums["F"]), num(p.nums["F"]*1000)), highlight: ""},
					{text: "Stress is force over area: σ = F / A.", highlight: "σ = F/A"},
				}
			},
			options: func(p params, s solved) []string {
				sigma := s["sigma"]
				return []string{
					fmt.Sprintf("%.0f MPa", sigma),
					fmt.Sprintf("%.0f MPa", sigma/2),
					fmt.Sprintf("%.0f MPa", sigma*2),
					fmt.Sprintf("%.0f MPa", sigma/10),
				}
			},
			explanation: func(p params, s solved) string {
				return fmt.Sprintf("σ = F/A = %.0f N over %.0f mm² ≈ %.0f MPa.", p.nums["F"]*1000, s["A"], s["sigma"])
			},
			formula: func(params, solved) string { return "σ = F / A,  A = πd²/4" },
		},
		{
			ID:          "ss_curve_identify",
			Category:    "mechanics_of_materials",
			Tags:        []string{"stress", "strain", "curve", "yield", "material"},
			DiagramType: "curve",
			Format:      FormatIdentify,
			choiceParams: map[string][]string{
				"target": {"yield point", "ultimate strength", "fracture point", "proportional limit"},
			},
			hook: func(p params) string {
				return fmt.Sprintf("On this stress-strain curve, where exactly is the %s?", p.choices["target"])
			},
			diagramDesc: func(p params) string {
				return fmt.Sprintf("Stress-strain curve for a ductile metal with the %s region left unlabeled", p.choices["target"])
			},
			steps: func(p params) []stepSpec {
				return []stepSpec{
					{text: "Follow the curve from the origin: linear elastic first, then it bends.", highlight: "elastic region"},
					{text: "Each landmark on the curve marks a change in material behavior.", highlight: ""},
				}
			},
			options: func(p params, s solved) []string {
				correct := p.choices["target"]
				out := []string{correct}
				for _, c := range []string{"yield point", "ultimate strength", "fracture point", "proportional limit"} {
					if c != correct {
						out = append(out, c)
					}
				}
				return out
			},
			explanation: func(p params, s solved) string {
				switch p.choices["target"] {
				case "yield point":
					return "The yield point is where the curve first departs from proportionality and permanent deformation begins."
				case "ultimate strength":
					return "Ultimate strength is the peak of the curve, the maximum stress the material sustains."
				case "fracture point":
					return "The fracture point is the end of the curve, where the specimen finally breaks."
				default:
					return "The proportional limit is the last point where stress and strain stay exactly linear."
				}
			},
			keyFacts: func(params, solved) []string {
				return []string{
					"Elastic region: stress proportional to strain (Hooke's law)",
					"Yield point: onset of permanent deformation",
					"Ultimate strength: peak stress before necking",
				}
			},
		},
		{
			ID:          "tf_stress_diameter",
			Category:    "mechanics_of_materials",
			Tags:        []string{"stress", "axial", "true false", "concept", "rod"},
			DiagramType: "rod",
			Format:      FormatTrueFalse,
			choiceParams: map[string][]string{
				"statement": {
					"Doubling the diameter of a rod halves the axial stress.",
					"Doubling the diameter of a rod cuts the axial stress to one quarter.",
					"Axial stress depends only on the applied force, not on the cross section.",
				},
			},
			hook: func(p params) string {
				return "True or false: " + p.choices["statement"]
			},
			diagramDesc: func(p params) string {
				return "Two circular rods side by side under the same axial load, one with twice the diameter of the other"
			},
			steps: func(p params) []stepSpec {
				return []stepSpec{
					{text: "Stress is force divided by area, and area scales with diameter squared.", highlight: "σ = F/A"},
					{text: "Double the diameter means four times the area.", highlight: "A ∝ d²"},
				}
			},
			options: func(p params, s solved) []string {
				if p.choices["statement"] == "Doubling the diameter of a rod cuts the axial stress to one quarter." {
					return []string{"True", "False"}
				}
				return []string{"False", "True"}
			},
			explanation: func(p params, s solved) string {
				return "Area grows with the square of diameter, so doubling the diameter quarters the stress."
			},
			formula: func(params, solved) string { return "σ = F / A,  A ∝ d²" },
		},
		{
			ID:          "concept_stress_strain",
			Category:    "mechanics_of_materials",
			Tags:        []string{"stress", "strain", "concept", "hooke", "modulus"},
			DiagramType: "curve",
			Format:      FormatInfographic,
			hook: func(p params) string {
				return "Stress vs strain in 60 seconds: the three numbers every engineer memorizes."
			},
			diagramDesc: func(p params) string {
				return "Annotated stress-strain curve for a ductile metal with elastic region, yield point and ultimate strength labeled"
			},
			steps: func(p params) []stepSpec {
				return []stepSpec{
					{text: "Stress is internal force per unit area; strain is deformation per unit length.", highlight: "σ and ε"},
					{text: "In the elastic region they are proportional: the slope is Young's modulus.", highlight: "E = σ/ε"},
					{text: "Past the yield point, deformation is permanent.", highlight: "yield"},
				}
			},
			keyFacts: func(params, solved) []string {
				return []string{
					"σ = F/A, units of MPa",
					"ε = ΔL/L, dimensionless",
					"E = σ/ε in the elastic region (steel ≈ 200 GPa)",
				}
			},
			formula: func(params, solved) string { return "E = σ / ε" },
			explanation: func(params, solved) string {
				return "Young's modulus ties stress to strain in the elastic region; steel's is about 200 GPa."
			},
		},
		{
			ID:          "fbd_hanging_sign",
			Category:    "statics",
			Tags:        []string{"free body", "fbd", "tension", "cable", "equilibrium", "statics"},
			DiagramType: "fbd",
			Format:      FormatQuiz,
			numParams: map[string]paramRange{
				"W":     {min: 100, max: 500, step: 100, unit: "N"},
				"theta": {min: 30, max: 60, step: 15, unit: "deg"},
			},
			solve: func(p params) solved {
				// symmetric two-cable hang
				rad := p.nums["theta"] * math.Pi / 180
				return solved{"T": p.nums["W"] / (2 * math.Sin(rad))}
			},
			hook: func(p params) string {
				return fmt.Sprintf("A %s N sign hangs from two cables at %s°. What tension does each cable carry?",
					num(p.nums["W"]), num(p.nums["theta"]))
			},
			diagramDesc: func(p params) string {
				return fmt.Sprintf("Free body diagram of a %s N sign suspended symmetrically by two cables at %s degrees from horizontal",
					num(p.nums["W"]), num(p.nums["theta"]))
			},
			steps: func(p params) []stepSpec {
				return []stepSpec{
					{text: "Draw the free body: weight down, two cable tensions up along the cables.", highlight: "free body"},
					{text: fmt.Sprintf("Vertical equilibrium: 2·T·sin(%s°) = W.", num(p.nums["theta"])), highlight: "ΣFy = 0"},
					{text: "Solve for T.", highlight: ""},
				}
			},
			options: func(p params, s solved) []string {
				T := s["T"]
				return []string{
					fmt.Sprintf("%.0f N each", T),
					fmt.Sprintf("%.0f N each", p.nums["W"]/2),
					fmt.Sprintf("%.0f N each", p.nums["W"]),
					fmt.Sprintf("%.0f N each", T*2),
				}
			},
			explanation: func(p params, s solved) string {
				return fmt.Sprintf("Only the vertical components of the tensions hold the weight, so T = W / (2·sinθ) ≈ %.0f N.", s["T"])
			},
			formula: func(params, solved) string { return "T = W / (2·sinθ)" },
		},
	}
}
