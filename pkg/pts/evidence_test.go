package pts

import (
	"testing"
)

func meas(path, digest string) *Measurement {
	return &Measurement{Path: path, Algorithm: AlgSHA256, Digest: digest}
}

func TestCompare_AllMatch(t *testing.T) {
	live := []*Measurement{
		meas("/boot/vmlinuz", "aa11"),
		meas("/etc/passwd", "bb22"),
	}
	ref := []*Measurement{
		meas("/boot/vmlinuz", "AA11"), // digest comparison is case-insensitive
		meas("/etc/passwd", "bb22"),
	}

	summary := Compare(live, ref)
	if !summary.Valid {
		t.Error("summary invalid despite full match")
	}
	if summary.Matched != 2 || summary.Mismatched != 0 {
		t.Errorf("matched=%d mismatched=%d, want 2/0", summary.Matched, summary.Mismatched)
	}
}

func TestCompare_MismatchInvalidates(t *testing.T) {
	live := []*Measurement{meas("/boot/vmlinuz", "aa11")}
	ref := []*Measurement{meas("/boot/vmlinuz", "ff99")}

	summary := Compare(live, ref)
	if summary.Valid {
		t.Error("summary valid despite digest mismatch")
	}
	if summary.Mismatched != 1 {
		t.Errorf("Mismatched = %d, want 1", summary.Mismatched)
	}
	if summary.Results[0].Status != "mismatch" {
		t.Errorf("Status = %q, want mismatch", summary.Results[0].Status)
	}
}

func TestCompare_MissingLiveInvalidates(t *testing.T) {
	ref := []*Measurement{meas("/boot/vmlinuz", "aa11")}

	summary := Compare(nil, ref)
	if summary.Valid {
		t.Error("summary valid despite missing live measurement")
	}
	if summary.MissingLive != 1 {
		t.Errorf("MissingLive = %d, want 1", summary.MissingLive)
	}
}

func TestCompare_MissingReferenceIsWarningOnly(t *testing.T) {
	live := []*Measurement{
		meas("/boot/vmlinuz", "aa11"),
		meas("/etc/motd", "cc33"), // no reference value for this one
	}
	ref := []*Measurement{meas("/boot/vmlinuz", "aa11")}

	summary := Compare(live, ref)
	if !summary.Valid {
		t.Error("extra live measurement without reference must not invalidate")
	}
	if summary.MissingRef != 1 {
		t.Errorf("MissingRef = %d, want 1", summary.MissingRef)
	}
}

func TestEvidence_EncodeDecode(t *testing.T) {
	e := New()
	e.SetPlatformInfo("Ubuntu 24.04")

	ev := e.NewEvidence()
	ev.Add(meas("/boot/vmlinuz", "aa11"))
	ev.Add(meas("/etc/passwd", "bb22"))

	data, err := ev.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := DecodeEvidence(data)
	if err != nil {
		t.Fatalf("DecodeEvidence failed: %v", err)
	}
	if decoded.PlatformInfo != "Ubuntu 24.04" {
		t.Errorf("PlatformInfo = %q", decoded.PlatformInfo)
	}
	if len(decoded.Measurements) != 2 {
		t.Fatalf("got %d measurements, want 2", len(decoded.Measurements))
	}
	if decoded.Measurements[1].Digest != "bb22" {
		t.Errorf("second digest = %q, want bb22", decoded.Measurements[1].Digest)
	}
}

func TestDecodeEvidence_Garbage(t *testing.T) {
	if _, err := DecodeEvidence([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Error("expected error decoding garbage")
	}
}
