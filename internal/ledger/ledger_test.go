package ledger

import "testing"

func TestRecordFirstWriteWins(t *testing.T) {
	l := New()
	if !l.Record(ComponentEditor, OutcomeSuccess, "") {
		t.Fatal("first record should be accepted")
	}
	if l.Record(ComponentEditor, OutcomeFailed, "later failure") {
		t.Fatal("second record for the same component should be rejected")
	}
	if got := l.Status(ComponentEditor); got != OutcomeSuccess {
		t.Errorf("Status = %s, want success", got)
	}
	if got := l.Reason(ComponentEditor); got != "" {
		t.Errorf("Reason = %q, want empty", got)
	}
}

func TestStatusUnknownBeforeRecording(t *testing.T) {
	l := New()
	if got := l.Status(ComponentToolchain); got != OutcomeUnknown {
		t.Errorf("Status = %s, want unknown", got)
	}
}

func TestEntriesPreserveRecordingOrder(t *testing.T) {
	l := New()
	l.Record(ComponentRepository, OutcomeSuccess, "")
	l.Record(ComponentSystemPackages, OutcomeSkipped, "artifact not present in bundle")
	l.Record(ComponentEditor, OutcomeFailed, "dpkg exited 1")

	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(entries))
	}
	wantOrder := []Component{ComponentRepository, ComponentSystemPackages, ComponentEditor}
	for i, want := range wantOrder {
		if entries[i].Component != want {
			t.Errorf("entries[%d] = %s, want %s", i, entries[i].Component, want)
		}
	}
}

func TestHasFailure(t *testing.T) {
	l := New()
	l.Record(ComponentRepository, OutcomeSuccess, "")
	l.Record(ComponentEditor, OutcomeSkipped, "not installed")
	if l.HasFailure() {
		t.Error("HasFailure = true with no failed entries")
	}
	l.Record(ComponentToolchain, OutcomeFailed, "installer exited 2")
	if !l.HasFailure() {
		t.Error("HasFailure = false after a failed entry")
	}
}

func TestComponentStrings(t *testing.T) {
	for _, c := range []Component{
		ComponentRepository,
		ComponentSystemPackages,
		ComponentEditor,
		ComponentEditorExtensions,
		ComponentModelRuntime,
		ComponentToolchain,
		ComponentLanguagePackages,
	} {
		if c.String() == "unknown" {
			t.Errorf("component %d has no string key", c)
		}
		if c.Title() == "Unknown component" {
			t.Errorf("component %d has no title", c)
		}
	}
}

func TestOutcomeStrings(t *testing.T) {
	cases := map[Outcome]string{
		OutcomeUnknown: "unknown",
		OutcomeSuccess: "success",
		OutcomeFailed:  "failed",
		OutcomeSkipped: "skipped",
	}
	for outcome, want := range cases {
		if got := outcome.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", outcome, got, want)
		}
	}
}
