package attest

import (
	"testing"
)

func TestNew_InitialState(t *testing.T) {
	s := New(42)

	if got := s.ConnectionID(); got != 42 {
		t.Errorf("ConnectionID() = %d, want 42", got)
	}
	if got := s.HandshakePhase(); got != PhaseInit {
		t.Errorf("HandshakePhase() = %v, want PhaseInit", got)
	}
	rec, eval := s.Recommendation()
	if rec != RecommendationNone {
		t.Errorf("Recommendation = %v, want RecommendationNone", rec)
	}
	if eval != EvaluationDontKnow {
		t.Errorf("Evaluation = %v, want EvaluationDontKnow", eval)
	}
	if s.MeasurementError() {
		t.Error("MeasurementError() = true on fresh state")
	}
	if s.FileMeasurementRequestCount() != 0 || s.ComponentEvidenceRequestCount() != 0 {
		t.Error("fresh state has non-empty registries")
	}
	if s.Engine() == nil {
		t.Error("Engine() = nil, want owned engine")
	}
}

func TestNew_WithPlatformInfo(t *testing.T) {
	s := New(1, WithPlatformInfo("Ubuntu 24.04 6.8.0-41-generic"))
	if got := s.Engine().PlatformInfo(); got != "Ubuntu 24.04 6.8.0-41-generic" {
		t.Errorf("PlatformInfo() = %q", got)
	}

	// Empty option string leaves the engine's defaults untouched
	s2 := New(2, WithPlatformInfo(""))
	if s2.Engine() == nil {
		t.Fatal("engine missing")
	}
}

func TestAddFileMeasurementRequest_IDsUniqueAndIncreasing(t *testing.T) {
	s := New(1)

	seen := make(map[uint16]bool)
	var prev uint16
	for i := 0; i < 200; i++ {
		id := s.AddFileMeasurementRequest(i, i%2 == 0)
		if id == 0 {
			t.Fatalf("issued id 0 at request %d", i)
		}
		if id <= prev {
			t.Fatalf("id %d not strictly greater than previous %d", id, prev)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
		prev = id
	}

	if got := s.FileMeasurementRequestCount(); got != 200 {
		t.Errorf("FileMeasurementRequestCount() = %d, want 200", got)
	}
}

func TestAddFileMeasurementRequest_FirstIDIsOne(t *testing.T) {
	s := New(1)
	if id := s.AddFileMeasurementRequest(7, false); id != 1 {
		t.Errorf("first issued id = %d, want 1", id)
	}
}

func TestFileMeasurementRequest_IDNotReusedAfterCheckOff(t *testing.T) {
	s := New(1)

	first := s.AddFileMeasurementRequest(10, false)
	if _, _, found := s.CheckOffFileMeasurementRequest(first); !found {
		t.Fatal("check-off of issued id failed")
	}

	second := s.AddFileMeasurementRequest(11, true)
	if second == first {
		t.Errorf("id %d reused after check-off", first)
	}
	if second <= first {
		t.Errorf("id %d not greater than previously issued %d", second, first)
	}
}

func TestCheckOffFileMeasurementRequest_RoundTrip(t *testing.T) {
	s := New(1)

	id := s.AddFileMeasurementRequest(42, true)
	before := s.FileMeasurementRequestCount()

	fileID, isDir, found := s.CheckOffFileMeasurementRequest(id)
	if !found {
		t.Fatal("expected match for issued id")
	}
	if fileID != 42 || !isDir {
		t.Errorf("payload = (%d, %v), want (42, true)", fileID, isDir)
	}
	if got := s.FileMeasurementRequestCount(); got != before-1 {
		t.Errorf("count after check-off = %d, want %d", got, before-1)
	}
}

func TestCheckOffFileMeasurementRequest_UnknownID(t *testing.T) {
	s := New(1)
	s.AddFileMeasurementRequest(1, false)
	s.AddFileMeasurementRequest(2, false)

	before := s.FileMeasurementRequestCount()

	// Never issued
	if _, _, found := s.CheckOffFileMeasurementRequest(999); found {
		t.Error("check-off of never-issued id reported a match")
	}
	if got := s.FileMeasurementRequestCount(); got != before {
		t.Errorf("count mutated by failed check-off: %d, want %d", got, before)
	}

	// Already checked off
	id := s.AddFileMeasurementRequest(3, true)
	s.CheckOffFileMeasurementRequest(id)
	if _, _, found := s.CheckOffFileMeasurementRequest(id); found {
		t.Error("second check-off of same id reported a match")
	}
}

func TestComponentEvidenceRequest_ExactMatch(t *testing.T) {
	s := New(1)
	q := Qualifier{Kernel: true, SubComponent: false, Type: 2}

	s.AddComponentEvidenceRequest(7, q, ComponentBootLoader)

	if !s.CheckOffComponentEvidenceRequest(7, q, ComponentBootLoader) {
		t.Fatal("exact tuple match failed")
	}
	// Only one entry: a second identical check-off must miss
	if s.CheckOffComponentEvidenceRequest(7, q, ComponentBootLoader) {
		t.Error("second check-off of same tuple reported a match")
	}
}

func TestComponentEvidenceRequest_PartialTupleDoesNotMatch(t *testing.T) {
	s := New(1)
	q := Qualifier{Kernel: true, Type: 2}
	s.AddComponentEvidenceRequest(7, q, ComponentBootLoader)

	if s.CheckOffComponentEvidenceRequest(8, q, ComponentBootLoader) {
		t.Error("matched despite different vendor")
	}
	if s.CheckOffComponentEvidenceRequest(7, Qualifier{Kernel: false, Type: 2}, ComponentBootLoader) {
		t.Error("matched despite different qualifier")
	}
	if s.CheckOffComponentEvidenceRequest(7, q, ComponentTBoot) {
		t.Error("matched despite different component name")
	}
	if got := s.ComponentEvidenceRequestCount(); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestComponentEvidenceRequest_DuplicatesTrackedSeparately(t *testing.T) {
	s := New(1)
	q := Qualifier{Type: 1}

	s.AddComponentEvidenceRequest(5, q, ComponentIML)
	s.AddComponentEvidenceRequest(5, q, ComponentIML)

	if got := s.ComponentEvidenceRequestCount(); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}
	if !s.CheckOffComponentEvidenceRequest(5, q, ComponentIML) {
		t.Fatal("first duplicate check-off failed")
	}
	if got := s.ComponentEvidenceRequestCount(); got != 1 {
		t.Errorf("count after one check-off = %d, want 1 (removed more than one entry)", got)
	}
	if !s.CheckOffComponentEvidenceRequest(5, q, ComponentIML) {
		t.Error("second duplicate check-off failed")
	}
}

func TestSetMeasurementError_Monotonic(t *testing.T) {
	s := New(1)

	for i := 0; i < 5; i++ {
		s.SetMeasurementError()
		if !s.MeasurementError() {
			t.Fatalf("MeasurementError() = false after SetMeasurementError (call %d)", i+1)
		}
	}
}

func TestSetRecommendation_LastWriteWins(t *testing.T) {
	s := New(1)

	s.SetRecommendation(RecommendationAllow, EvaluationCompliant)
	s.SetRecommendation(RecommendationNoAccess, EvaluationNonCompliantMajor)

	rec, eval := s.Recommendation()
	if rec != RecommendationNoAccess || eval != EvaluationNonCompliantMajor {
		t.Errorf("Recommendation() = (%v, %v), want latest write", rec, eval)
	}
}

func TestSetHandshakePhase_Unconditional(t *testing.T) {
	s := New(1)

	s.SetHandshakePhase(PhaseMeasurements)
	s.SetHandshakePhase(PhaseEvaluating)
	// Backward transition is stored, not rejected; the driver owns legality
	s.SetHandshakePhase(PhaseMeasurements)

	if got := s.HandshakePhase(); got != PhaseMeasurements {
		t.Errorf("HandshakePhase() = %v, want PhaseMeasurements", got)
	}
}

func TestTransportState_OpaquePassThrough(t *testing.T) {
	s := New(1)

	if got := s.TransportState(); got != TransportCreate {
		t.Errorf("initial TransportState() = %v, want TransportCreate", got)
	}
	s.SetTransportState(TransportAccessIsolated)
	if got := s.TransportState(); got != TransportAccessIsolated {
		t.Errorf("TransportState() = %v, want TransportAccessIsolated", got)
	}
}

func TestDestroy_WithPendingRequests(t *testing.T) {
	s := New(1)

	s.AddFileMeasurementRequest(1, false)
	s.AddFileMeasurementRequest(2, true)
	s.AddComponentEvidenceRequest(3, Qualifier{}, ComponentTrustedPlatform)

	// Teardown mid-flight must drop the remaining entries without error
	s.Destroy()

	if got := s.FileMeasurementRequestCount(); got != 0 {
		t.Errorf("file request count after Destroy = %d, want 0", got)
	}
	if got := s.ComponentEvidenceRequestCount(); got != 0 {
		t.Errorf("component request count after Destroy = %d, want 0", got)
	}
}
