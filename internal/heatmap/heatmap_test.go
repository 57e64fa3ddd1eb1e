package heatmap

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/claude/musclemap/internal/classify"
	"github.com/claude/musclemap/internal/models"
	"github.com/claude/musclemap/internal/muscle"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) models.LogDate {
	d := testNow.AddDate(0, 0, -n)
	return models.LogDate{Time: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)}
}

func logEntry(name string, ago int, sets ...models.WorkoutSetRecord) models.WorkoutLogEntry {
	return models.WorkoutLogEntry{ExerciseName: name, Date: daysAgo(ago), Sets: sets}
}

func done(weight float64, reps int) models.WorkoutSetRecord {
	return models.WorkoutSetRecord{WeightKg: weight, Reps: reps, Completed: true}
}

// TestAggregateEmpty verifies all 14 muscles are present at zero and the
// normalizer reports no activity.
func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil, 30, testNow)
	if len(stats) != muscle.Count {
		t.Fatalf("len(stats) = %d, want %d", len(stats), muscle.Count)
	}
	for _, g := range muscle.All() {
		st, ok := stats[g]
		if !ok {
			t.Errorf("missing %v", g)
			continue
		}
		if st.Volume != 0 || st.Frequency != 0 || st.Muscle != g {
			t.Errorf("stats[%v] = %+v, want zero", g, st)
		}
	}
	if _, active := Normalize(stats, nil); active {
		t.Error("hasActivity = true, want false")
	}
}

// TestAggregateCompletedSetVolume verifies volume sums weight×reps of completed
// sets only and frequency counts entries, not sets.
func TestAggregateCompletedSetVolume(t *testing.T) {
	logs := []models.WorkoutLogEntry{
		logEntry("Pec Deck", 1,
			done(100, 5),
			done(80, 8),
			models.WorkoutSetRecord{WeightKg: 500, Reps: 20, Completed: false},
		),
	}
	stats := Aggregate(logs, 7, testNow)
	chest := stats[muscle.Chest]
	if chest.Volume != 1140 {
		t.Errorf("chest.Volume = %v, want 1140", chest.Volume)
	}
	if chest.Frequency != 1 {
		t.Errorf("chest.Frequency = %d, want 1", chest.Frequency)
	}
	for _, g := range muscle.All() {
		if g != muscle.Chest && stats[g].Volume != 0 {
			t.Errorf("stats[%v].Volume = %v, want 0", g, stats[g].Volume)
		}
	}
}

func TestAggregateMultiMuscleAndFrequency(t *testing.T) {
	logs := []models.WorkoutLogEntry{
		logEntry("Romanian Deadlift", 2, done(100, 10)),
		logEntry("Romanian Deadlift", 3, done(100, 5), done(100, 5)),
		logEntry("Yoga", 1, done(0, 60)),
	}
	stats := Aggregate(logs, 7, testNow)
	for _, g := range []muscle.MuscleGroup{muscle.Hamstrings, muscle.Glutes, muscle.LowerBack} {
		if stats[g].Volume != 2000 {
			t.Errorf("stats[%v].Volume = %v, want 2000", g, stats[g].Volume)
		}
		if stats[g].Frequency != 2 {
			t.Errorf("stats[%v].Frequency = %d, want 2", g, stats[g].Frequency)
		}
	}
}

// TestAggregateWindowExcludesOldLogs verifies logs older than the cutoff
// contribute nothing regardless of content.
func TestAggregateWindowExcludesOldLogs(t *testing.T) {
	logs := []models.WorkoutLogEntry{
		logEntry("Back Squat", 31, done(200, 5)),
		logEntry("Bench Press", 45, done(150, 5)),
	}
	stats := Aggregate(logs, 30, testNow)
	for _, g := range muscle.All() {
		if stats[g].Volume != 0 || stats[g].Frequency != 0 {
			t.Errorf("stats[%v] = %+v, want zero", g, stats[g])
		}
	}

	stats = Aggregate(logs, 90, testNow)
	if stats[muscle.Quads].Volume != 1000 || stats[muscle.Chest].Volume != 750 {
		t.Errorf("90-day window: quads=%v chest=%v", stats[muscle.Quads].Volume, stats[muscle.Chest].Volume)
	}
}

// TestAggregateClampsMalformedSets verifies negative and non-finite numbers
// are treated as zero rather than reducing volume.
func TestAggregateClampsMalformedSets(t *testing.T) {
	logs := []models.WorkoutLogEntry{
		logEntry("Bench Press", 0,
			done(-50, 10),
			done(60, -3),
			done(math.NaN(), 5),
			done(math.Inf(1), 5),
			done(40, 10),
		),
	}
	if got := Aggregate(logs, 7, testNow)[muscle.Chest].Volume; got != 400 {
		t.Errorf("chest volume = %v, want 400", got)
	}
}

// TestAggregateSaturatesOverflow verifies a volume too large for float64
// stays finite and still normalizes to 1.
func TestAggregateSaturatesOverflow(t *testing.T) {
	logs := []models.WorkoutLogEntry{
		logEntry("Bench Press", 0, done(1e308, 10), done(1e308, 10)),
		logEntry("Barbell Curl", 0, done(50, 10)),
	}
	stats := Aggregate(logs, 7, testNow)
	if got := stats[muscle.Chest].Volume; got != math.MaxFloat64 {
		t.Errorf("chest volume = %v, want MaxFloat64", got)
	}

	in, active := Normalize(stats, nil)
	if !active {
		t.Fatal("hasActivity = false, want true")
	}
	if in[muscle.Chest] != 1 {
		t.Errorf("chest = %v, want 1", in[muscle.Chest])
	}
	if v := in[muscle.Biceps]; v < 0 || v > 1 {
		t.Errorf("biceps = %v out of range", v)
	}

	h := Build(logs, Query{WindowDays: 7, Now: testNow})
	if _, err := json.Marshal(h); err != nil {
		t.Errorf("marshal heatmap: %v", err)
	}
}

// TestNormalizeInfiniteVolume verifies an infinite volume counts as the
// maximum instead of zeroing every intensity.
func TestNormalizeInfiniteVolume(t *testing.T) {
	stats := EmptyStats()
	stats[muscle.Quads] = MuscleStat{Muscle: muscle.Quads, Volume: math.Inf(1)}
	stats[muscle.Calves] = MuscleStat{Muscle: muscle.Calves, Volume: math.NaN()}
	stats[muscle.Chest] = MuscleStat{Muscle: muscle.Chest, Volume: 100}

	in, _ := Normalize(stats, nil)
	if in[muscle.Quads] != 1 {
		t.Errorf("quads = %v, want 1", in[muscle.Quads])
	}
	if in[muscle.Calves] != 0 {
		t.Errorf("calves = %v, want 0", in[muscle.Calves])
	}
	if v := in[muscle.Chest]; v < 0 || v > 1 || math.IsNaN(v) {
		t.Errorf("chest = %v out of range", v)
	}
}

func TestAggregateDoesNotMutateLogs(t *testing.T) {
	logs := []models.WorkoutLogEntry{logEntry("Bench Press", 0, done(-50, 10))}
	Aggregate(logs, 7, testNow)
	if logs[0].Sets[0].WeightKg != -50 {
		t.Error("Aggregate modified its input")
	}
}

// TestNormalizeMaxIsOne verifies the maximum-volume muscle maps to exactly 1.
func TestNormalizeMaxIsOne(t *testing.T) {
	stats := EmptyStats()
	stats[muscle.Quads] = MuscleStat{Muscle: muscle.Quads, Volume: 5000, Frequency: 2}
	stats[muscle.Chest] = MuscleStat{Muscle: muscle.Chest, Volume: 1250, Frequency: 1}

	in, active := Normalize(stats, nil)
	if !active {
		t.Fatal("hasActivity = false, want true")
	}
	if in[muscle.Quads] != 1.0 {
		t.Errorf("quads = %v, want 1.0", in[muscle.Quads])
	}
	if in[muscle.Chest] != 0.25 {
		t.Errorf("chest = %v, want 0.25", in[muscle.Chest])
	}
	if len(in) != muscle.Count {
		t.Errorf("len = %d, want %d", len(in), muscle.Count)
	}
	for g, v := range in {
		if v < 0 || v > 1 {
			t.Errorf("intensity[%v] = %v out of range", g, v)
		}
	}
	if stats[muscle.Quads].Volume != 5000 {
		t.Error("Normalize modified its input")
	}
}

// TestNormalizeVolumeFloor verifies volumes below 1 are divided by 1.
func TestNormalizeVolumeFloor(t *testing.T) {
	stats := EmptyStats()
	stats[muscle.Abs] = MuscleStat{Muscle: muscle.Abs, Volume: 0.5}
	in, active := Normalize(stats, nil)
	if !active {
		t.Fatal("hasActivity = false, want true")
	}
	if in[muscle.Abs] != 0.5 {
		t.Errorf("abs = %v, want 0.5", in[muscle.Abs])
	}
}

func TestNormalizeNoActivityUsesExample(t *testing.T) {
	in, active := Normalize(EmptyStats(), nil)
	if active {
		t.Error("hasActivity = true, want false")
	}
	if diff := cmp.Diff(DefaultExample(), in); diff != "" {
		t.Errorf("example mismatch (-want +got):\n%s", diff)
	}
}

// TestNormalizeOverridesWin verifies overrides replace real activity and are clamped.
func TestNormalizeOverridesWin(t *testing.T) {
	stats := EmptyStats()
	stats[muscle.Chest] = MuscleStat{Muscle: muscle.Chest, Volume: 1000}

	in, active := Normalize(stats, Intensities{muscle.Biceps: 1.7, muscle.Calves: -0.2, muscle.Lats: 0.4})
	if !active {
		t.Error("hasActivity should reflect the stats even with overrides")
	}
	want := Intensities{}
	for _, g := range muscle.All() {
		want[g] = 0
	}
	want[muscle.Biceps] = 1
	want[muscle.Lats] = 0.4
	if diff := cmp.Diff(want, in); diff != "" {
		t.Errorf("override mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultExampleIsCopy(t *testing.T) {
	ex := DefaultExample()
	ex[muscle.Chest] = 0
	if DefaultExample()[muscle.Chest] == 0 {
		t.Error("DefaultExample returned shared state")
	}
	if len(ex) != muscle.Count {
		t.Errorf("example covers %d muscles, want %d", len(ex), muscle.Count)
	}
}

func TestColorForEndpoints(t *testing.T) {
	if got := ColorFor(0); got != InactiveColor {
		t.Errorf("ColorFor(0) = %v, want inactive %v", got, InactiveColor)
	}
	if got := ColorFor(-1); got != InactiveColor {
		t.Errorf("ColorFor(-1) = %v, want inactive", got)
	}
	if got := ColorFor(math.NaN()); got != InactiveColor {
		t.Errorf("ColorFor(NaN) = %v, want inactive", got)
	}
	stops := GradientStops()
	last := stops[len(stops)-1].Color
	if got := ColorFor(1); got != last {
		t.Errorf("ColorFor(1) = %v, want %v", got, last)
	}
	if got := ColorFor(3); got != last {
		t.Errorf("ColorFor(3) = %v, want clamp to %v", got, last)
	}
	if got := ColorFor(0.5); got != stops[2].Color {
		t.Errorf("ColorFor(0.5) = %v, want stop %v", got, stops[2].Color)
	}
}

// TestColorForMidpoint verifies per-channel linear interpolation with rounding.
func TestColorForMidpoint(t *testing.T) {
	// Between {0.25, (59,130,246)} and {0.5, (250,204,21)}.
	want := RGB{R: 155, G: 167, B: 134}
	if got := ColorFor(0.375); got != want {
		t.Errorf("ColorFor(0.375) = %v, want %v", got, want)
	}
	if got := want.String(); got != "rgb(155,167,134)" {
		t.Errorf("String = %q", got)
	}
	if got := want.Hex(); got != "#9ba786" {
		t.Errorf("Hex = %q", got)
	}
}

func TestGradientDegenerateBracket(t *testing.T) {
	g := Gradient{
		Inactive: RGB{},
		Stops: []GradientStop{
			{Value: 0.5, Color: RGB{R: 10}},
			{Value: 0.5, Color: RGB{R: 20}},
			{Value: 1, Color: RGB{R: 200}},
		},
	}
	if got := g.ColorFor(0.5); got != (RGB{R: 10}) {
		t.Errorf("ColorFor(0.5) = %v, want lower stop of degenerate bracket", got)
	}
	if got := g.ColorFor(0.25); got != (RGB{R: 10}) {
		t.Errorf("ColorFor(0.25) = %v, want first stop below table", got)
	}
	if got := (Gradient{Inactive: RGB{B: 1}}).ColorFor(0.5); got != (RGB{B: 1}) {
		t.Errorf("empty gradient = %v, want inactive", got)
	}
}

// TestGradientStopsAscending guards the stop table invariant.
func TestGradientStopsAscending(t *testing.T) {
	stops := GradientStops()
	for i := 1; i < len(stops); i++ {
		if stops[i].Value < stops[i-1].Value {
			t.Errorf("stop %d value %v < previous %v", i, stops[i].Value, stops[i-1].Value)
		}
	}
	stops[0].Value = 99
	if GradientStops()[0].Value == 99 {
		t.Error("GradientStops returned shared state")
	}
}

func TestBuild(t *testing.T) {
	logs := []models.WorkoutLogEntry{
		logEntry("Back Squat", 1, done(100, 10)),
		logEntry("Bench Press", 2, done(100, 5)),
	}
	h := Build(logs, Query{WindowDays: 7, Now: testNow})
	if !h.HasActivity || h.Source != SourceActivity {
		t.Errorf("HasActivity=%v Source=%q", h.HasActivity, h.Source)
	}
	if len(h.Muscles) != muscle.Count {
		t.Fatalf("cells = %d, want %d", len(h.Muscles), muscle.Count)
	}
	for i, g := range muscle.All() {
		if h.Muscles[i].Muscle != g {
			t.Errorf("cell %d = %v, want %v", i, h.Muscles[i].Muscle, g)
		}
	}
	if h.Intensity(muscle.Quads) != 1 {
		t.Errorf("quads = %v, want 1", h.Intensity(muscle.Quads))
	}
	if h.Intensity(muscle.Chest) != 0.5 {
		t.Errorf("chest = %v, want 0.5", h.Intensity(muscle.Chest))
	}
	if h.Muscles[0].Color != ColorFor(0.5).String() {
		t.Errorf("chest color = %q", h.Muscles[0].Color)
	}
	if h.Intensity(muscle.Biceps) != 0 || h.Muscles[2].Color != InactiveColor.String() {
		t.Errorf("biceps = %+v, want inactive", h.Muscles[2])
	}

	empty := Build(nil, Query{WindowDays: 30, Now: testNow})
	if empty.HasActivity || empty.Source != SourceExample {
		t.Errorf("empty: HasActivity=%v Source=%q", empty.HasActivity, empty.Source)
	}

	over := Build(logs, Query{WindowDays: 7, Now: testNow, Overrides: Intensities{muscle.Calves: 1}})
	if over.Source != SourceOverride || over.Intensity(muscle.Calves) != 1 || over.Intensity(muscle.Quads) != 0 {
		t.Errorf("override: %+v", over)
	}
}

// TestBuildIdempotent verifies identical inputs produce byte-identical output.
func TestBuildIdempotent(t *testing.T) {
	logs := []models.WorkoutLogEntry{
		logEntry("Deadlift", 3, done(180, 3), done(180, 3)),
		logEntry("Pull-Up", 1, done(0, 10), done(20, 6)),
		logEntry("Lateral Raise", 0, done(12, 15)),
	}
	q := Query{WindowDays: 30, Now: testNow}

	a, err := json.Marshal(Build(logs, q))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(Build(logs, q))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("outputs differ:\n%s\n%s", a, b)
	}
}

func TestFingerprint(t *testing.T) {
	a := []models.WorkoutLogEntry{logEntry("Bench Press", 1, done(100, 5))}
	b := []models.WorkoutLogEntry{logEntry("Bench Press", 1, done(100, 6))}
	if Fingerprint(a) != Fingerprint(a) {
		t.Error("fingerprint not stable")
	}
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("fingerprint should change when a set changes")
	}
	if Fingerprint(nil) == Fingerprint(a) {
		t.Error("empty and non-empty collections share a fingerprint")
	}
}

func TestContributions(t *testing.T) {
	logs := []models.WorkoutLogEntry{
		logEntry("Bench Press", 1, done(100, 5)),
		logEntry("bench press ", 2, done(100, 5)),
		logEntry("Push-Up", 3, done(0, 20), done(10, 10)),
		logEntry("Incline Bench Press", 40, done(80, 8)),
	}
	got := Contributions(classify.Default(), logs, 30, testNow)

	want := []Contribution{
		{Exercise: "Bench Press", Volume: 1000, Entries: 2},
		{Exercise: "Push-Up", Volume: 100, Entries: 1},
	}
	if diff := cmp.Diff(want, got[muscle.Chest]); diff != "" {
		t.Errorf("chest contributions mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got[muscle.Quads]; ok {
		t.Error("quads should have no contributions")
	}
	if len(got[muscle.Triceps]) != 1 || got[muscle.Triceps][0].Exercise != "Push-Up" {
		t.Errorf("triceps = %+v", got[muscle.Triceps])
	}
}
