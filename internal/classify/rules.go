package classify

import "github.com/claude/musclemap/internal/muscle"

// Rule adds Muscle when any of its matchers hits the name.
type Rule struct {
	Muscle   muscle.MuscleGroup
	Matchers []Matcher
}

// Overlay injects a fixed set of muscles for compound movements whenever a
// trigger hits, regardless of what the primary rules found.
type Overlay struct {
	Name     string
	Triggers []Matcher
	Muscles  muscle.Set
}

// Fallback is applied only when neither the primary rules nor the overlays
// produced a muscle. Excludes suppress the fallback, e.g. "leg press" for "press".
type Fallback struct {
	Trigger  Matcher
	Excludes []Matcher
	Muscles  muscle.Set
}

// Substring matching is deliberately loose: any name containing "row" is
// tagged upper_back and lats, even "narrow grip curl".
var primaryRules = []Rule{
	{muscle.Chest, []Matcher{
		Literal("bench"), Literal("chest"), Literal("pec"), Literal("crossover"),
		Pat(`\bfl(?:y|ye|yes|ies)\b`), Pat(`\bpush[- ]?ups?\b`), Pat(`\bpress[- ]?ups?\b`),
	}},
	{muscle.Shoulders, []Matcher{
		Literal("shoulder"), Literal("overhead press"), Literal("military press"),
		Literal("lateral raise"), Literal("front raise"), Literal("side raise"),
		Literal("delt"), Literal("arnold"), Literal("face pull"), Literal("upright row"),
		Pat(`\bohp\b`),
	}},
	{muscle.Biceps, []Matcher{
		Literal("bicep"), Literal("preacher"), Literal("chin-up"), Literal("chin up"), Literal("chinup"),
		Pat(`\b(?:hammer|concentration|spider|drag|ez[- ]?bar|barbell|dumbbell|db|cable|incline)\s+curls?\b`),
		Pat(`^curls?$`),
	}},
	{muscle.Triceps, []Matcher{
		Literal("tricep"), Literal("skull crusher"), Literal("skullcrusher"), Literal("pushdown"),
		Literal("push-down"), Literal("close grip"), Literal("close-grip"), Literal("kickback"),
		Literal("french press"), Pat(`\bdips?\b`),
	}},
	{muscle.Forearms, []Matcher{
		Literal("forearm"), Literal("wrist"), Literal("grip"), Literal("farmer"),
		Literal("reverse curl"), Literal("dead hang"),
	}},
	{muscle.Abs, []Matcher{
		Literal("crunch"), Literal("sit-up"), Literal("sit up"), Literal("situp"), Literal("plank"),
		Literal("leg raise"), Literal("knee raise"), Literal("hollow"), Literal("rollout"),
		Literal("ab wheel"), Literal("v-up"), Literal("toes to bar"), Pat(`\babs?\b`),
	}},
	{muscle.Obliques, []Matcher{
		Literal("oblique"), Literal("russian twist"), Literal("side plank"), Literal("woodchop"),
		Literal("wood chop"), Literal("pallof"), Literal("side bend"), Literal("windmill"),
	}},
	{muscle.Quads, []Matcher{
		Literal("squat"), Literal("leg press"), Literal("leg extension"), Literal("lunge"),
		Literal("quad"), Literal("step-up"), Literal("step up"), Literal("hack"), Literal("sissy"),
		Literal("wall sit"),
	}},
	{muscle.Hamstrings, []Matcher{
		Literal("hamstring"), Literal("leg curl"), Literal("good morning"), Literal("nordic"),
		Literal("romanian"), Literal("stiff leg"), Literal("stiff-leg"), Pat(`\b(?:rdl|sldl)s?\b`),
	}},
	{muscle.Glutes, []Matcher{
		Literal("glute"), Literal("hip thrust"), Literal("bridge"), Literal("abduct"),
		Literal("sumo"), Literal("donkey kick"), Literal("clamshell"),
	}},
	{muscle.Calves, []Matcher{
		Literal("calf"), Literal("calves"), Literal("tibialis"),
	}},
	{muscle.UpperBack, []Matcher{
		Literal("row"), Literal("shrug"), Literal("trap"), Literal("rear delt"), Literal("face pull"),
		Literal("reverse fly"), Literal("upper back"), Literal("rhomboid"),
	}},
	{muscle.Lats, []Matcher{
		Literal("pulldown"), Literal("pull-down"), Literal("pull down"), Literal("pullover"),
		Literal("straight arm"), Literal("row"), Pat(`\blats?\b`),
	}},
	{muscle.LowerBack, []Matcher{
		Literal("back extension"), Literal("hyperextension"), Literal("lower back"),
		Literal("superman"), Literal("good morning"), Literal("reverse hyper"),
	}},
}

var compoundOverlays = []Overlay{
	{
		Name:     "deadlift",
		Triggers: []Matcher{Literal("deadlift")},
		Muscles:  muscle.NewSet(muscle.Hamstrings, muscle.Glutes, muscle.LowerBack, muscle.UpperBack),
	},
	{
		Name:     "romanian deadlift",
		Triggers: []Matcher{Literal("romanian"), Pat(`\b(?:rdl|sldl)s?\b`), Literal("stiff leg")},
		Muscles:  muscle.NewSet(muscle.Hamstrings, muscle.Glutes, muscle.LowerBack),
	},
	{
		Name:     "squat",
		Triggers: []Matcher{Literal("squat")},
		Muscles:  muscle.NewSet(muscle.Quads, muscle.Glutes, muscle.Hamstrings),
	},
	{
		Name:     "lunge",
		Triggers: []Matcher{Literal("lunge"), Literal("split squat"), Literal("step-up"), Literal("step up")},
		Muscles:  muscle.NewSet(muscle.Quads, muscle.Glutes, muscle.Hamstrings),
	},
	{
		Name:     "pull-up",
		Triggers: []Matcher{Pat(`\bpull[- ]?ups?\b`), Pat(`\bchin[- ]?ups?\b`), Literal("muscle-up"), Literal("muscle up")},
		Muscles:  muscle.NewSet(muscle.Lats, muscle.UpperBack, muscle.Biceps),
	},
	{
		Name:     "push-up",
		Triggers: []Matcher{Pat(`\bpush[- ]?ups?\b`), Pat(`\bpress[- ]?ups?\b`)},
		Muscles:  muscle.NewSet(muscle.Chest, muscle.Shoulders, muscle.Triceps),
	},
	{
		Name:     "dip",
		Triggers: []Matcher{Pat(`\bdips?\b`)},
		Muscles:  muscle.NewSet(muscle.Chest, muscle.Triceps, muscle.Shoulders),
	},
	{
		Name:     "olympic lift",
		Triggers: []Matcher{Pat(`\b(?:power |hang |squat )?cleans?\b`), Pat(`\bsnatch(?:es)?\b`), Literal("jerk")},
		Muscles:  muscle.NewSet(muscle.Quads, muscle.Glutes, muscle.Hamstrings, muscle.Shoulders, muscle.UpperBack),
	},
	{
		Name:     "thruster",
		Triggers: []Matcher{Literal("thruster")},
		Muscles:  muscle.NewSet(muscle.Quads, muscle.Glutes, muscle.Shoulders, muscle.Triceps),
	},
	{
		Name:     "kettlebell swing",
		Triggers: []Matcher{Pat(`\bswings?\b`)},
		Muscles:  muscle.NewSet(muscle.Glutes, muscle.Hamstrings, muscle.LowerBack),
	},
	{
		Name:     "burpee",
		Triggers: []Matcher{Literal("burpee")},
		Muscles:  muscle.NewSet(muscle.Chest, muscle.Shoulders, muscle.Quads, muscle.Abs),
	},
	{
		Name:     "carry",
		Triggers: []Matcher{Literal("farmer"), Literal("carry"), Literal("suitcase")},
		Muscles:  muscle.NewSet(muscle.Forearms, muscle.UpperBack, muscle.Obliques),
	},
}

var fallbacks = []Fallback{
	{
		Trigger:  Literal("press"),
		Excludes: []Matcher{Literal("leg press")},
		Muscles:  muscle.NewSet(muscle.Shoulders, muscle.Triceps),
	},
	{
		Trigger: Literal("pull"),
		Muscles: muscle.NewSet(muscle.Lats, muscle.UpperBack),
	},
	{
		Trigger: Literal("push"),
		Muscles: muscle.NewSet(muscle.Chest, muscle.Shoulders),
	},
}
