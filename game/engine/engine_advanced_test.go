package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSimulation_MatchesRun(t *testing.T) {
	for _, mode := range []ScentMode{ScentByCell, ScentByCellAndOrientation} {
		t.Run(mode.String(), func(t *testing.T) {
			sim := NewSimulation(canonicalGrid, canonicalRobots(), Rules{ScentMode: mode})
			got := sim.RunToEnd()
			want := Run(canonicalGrid, canonicalRobots(), mode)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("replay differs from Run (-want +got):\n%s", diff)
			}
			if !sim.Done() {
				t.Error("simulation should be done")
			}
		})
	}
}

func TestSimulation_StepByStep(t *testing.T) {
	robots := []RobotSpec{
		{Position: Position{X: 0, Y: 0}, Orientation: North, Instructions: "FR"},
		{Position: Position{X: 1, Y: 1}, Orientation: East, Instructions: "F"},
	}
	sim := NewSimulation(Grid{MaxX: 1, MaxY: 1}, robots, DefaultRules())

	entry, ok := sim.Step()
	if !ok {
		t.Fatal("expected a step")
	}
	if entry.Number != 1 || entry.RobotIndex != 0 || entry.InstrIndex != 0 {
		t.Errorf("unexpected entry header %+v", entry)
	}
	if entry.Step.Outcome != OutcomeMoved || entry.Finished {
		t.Errorf("first step should move without finishing, got %+v", entry)
	}

	entry, _ = sim.Step()
	if !entry.Finished || entry.FinalResult == nil {
		t.Fatalf("second step should finish robot 0, got %+v", entry)
	}
	if *entry.FinalResult != (Result{X: 0, Y: 1, Orientation: East}) {
		t.Errorf("unexpected result %s", entry.FinalResult)
	}

	snap := sim.Snapshot()
	if snap.CurrentRobot != 1 || snap.InstrIndex != 0 || snap.Active == nil {
		t.Errorf("snapshot should point at robot 1, got %+v", snap)
	}
	if snap.Remaining != "F" {
		t.Errorf("expected remaining F, got %q", snap.Remaining)
	}

	entry, _ = sim.Step()
	if entry.Step.Outcome != OutcomeLost || entry.FinalResult == nil || !entry.FinalResult.Lost {
		t.Errorf("robot 1 should be lost, got %+v", entry)
	}

	if _, ok := sim.Step(); ok {
		t.Error("no steps should remain")
	}
	if sim.Snapshot().Active != nil {
		t.Error("finished snapshot should have no active robot")
	}
}

func TestSimulation_EmptyInstructionsFinishImmediately(t *testing.T) {
	robots := []RobotSpec{
		{Position: Position{X: 1, Y: 1}, Orientation: South},
		{Position: Position{X: 2, Y: 2}, Orientation: West},
	}
	sim := NewSimulation(Grid{MaxX: 3, MaxY: 3}, robots, DefaultRules())

	if !sim.Done() {
		t.Fatal("robots without instructions should finish without steps")
	}
	want := []Result{
		{X: 1, Y: 1, Orientation: South},
		{X: 2, Y: 2, Orientation: West},
	}
	if diff := cmp.Diff(want, sim.Results()); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if len(sim.History()) != 0 {
		t.Errorf("expected empty history, got %d entries", len(sim.History()))
	}
}

func TestSimulation_LostSkipsRemainingInstructions(t *testing.T) {
	robots := []RobotSpec{
		{Position: Position{X: 0, Y: 0}, Orientation: South, Instructions: "FFFFLL"},
	}
	sim := NewSimulation(Grid{MaxX: 3, MaxY: 3}, robots, DefaultRules())

	entries := sim.StepN(100)
	if len(entries) != 1 {
		t.Fatalf("expected loss on the first step, got %d steps", len(entries))
	}
	if !sim.Done() {
		t.Error("run should be done after the only robot is lost")
	}
}

func TestSimulation_StepN(t *testing.T) {
	sim := NewSimulation(canonicalGrid, canonicalRobots(), DefaultRules())

	entries := sim.StepN(10)
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	// robot 0 has 8 instructions, so steps 9 and 10 belong to robot 1
	if entries[7].RobotIndex != 0 || !entries[7].Finished {
		t.Errorf("step 8 should finish robot 0, got %+v", entries[7])
	}
	if entries[9].RobotIndex != 1 || entries[9].InstrIndex != 1 {
		t.Errorf("step 10 should be robot 1 instruction 1, got %+v", entries[9])
	}
	if got := len(sim.Results()); got != 1 {
		t.Errorf("expected 1 finished robot, got %d", got)
	}
}

func TestSimulation_Reset(t *testing.T) {
	sim := NewSimulation(canonicalGrid, canonicalRobots(), DefaultRules())
	first := sim.RunToEnd()

	snap := sim.Reset()
	if snap.Done || snap.TotalSteps != 0 || len(snap.Results) != 0 || len(snap.Scents) != 0 {
		t.Errorf("reset should rewind everything, got %+v", snap)
	}

	second := sim.RunToEnd()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("replay after reset differs (-first +second):\n%s", diff)
	}
}

func TestSimulation_HistoryOutcomes(t *testing.T) {
	sim := NewSimulation(canonicalGrid, canonicalRobots(), DefaultRules())
	sim.RunToEnd()

	counts := CountOutcomes(sim.History())
	if counts[OutcomeLost] != 1 {
		t.Errorf("expected 1 lost step, got %d", counts[OutcomeLost])
	}
	if counts[OutcomeAbsorbed] != 1 {
		t.Errorf("expected 1 absorbed step, got %d", counts[OutcomeAbsorbed])
	}
	// robot 1 is lost on the 8th of its 13 instructions
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 8+8+10 {
		t.Errorf("expected 26 steps, got %d", total)
	}
}

func TestSimulation_CopiesInput(t *testing.T) {
	robots := canonicalRobots()
	sim := NewSimulation(canonicalGrid, robots, DefaultRules())
	robots[0].Instructions = ""

	if sim.Robots()[0].Instructions != "RFRFRFRF" {
		t.Error("simulation should not share the caller's slice")
	}
}

func TestSnapshot_JSON(t *testing.T) {
	sim := NewSimulation(canonicalGrid, canonicalRobots(), DefaultRules())
	sim.StepN(3)

	data, err := json.Marshal(sim.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	for _, key := range []string{"grid", "rules", "active", "results", "scents", "last_step", "robots"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("snapshot JSON missing %q", key)
		}
	}
	rules := decoded["rules"].(map[string]interface{})
	if rules["scent_mode"] != "cell" {
		t.Errorf("expected scent_mode cell, got %v", rules["scent_mode"])
	}
}

func TestSimulation_ImplementsEngine(t *testing.T) {
	var _ Engine = (*Simulation)(nil)
}
